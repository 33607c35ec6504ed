package reservations

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"buslane/internal/holds"
	"buslane/internal/payments"
	"buslane/internal/seats"
	"buslane/internal/trips"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"seats unavailable", seats.NewSeatUnavailableError([]string{"1A"}), CodeSeatsUnavailable, http.StatusConflict},
		{"trip not found", trips.ErrTripNotFound, CodeTripNotFound, http.StatusNotFound},
		{"trip not bookable", ErrTripNotBookable, CodeTripNotBookable, http.StatusConflict},
		{"hold not found", holds.ErrHoldNotFound, CodeHoldNotFound, http.StatusNotFound},
		{"hold expired", holds.ErrHoldExpired, CodeHoldExpired, http.StatusGone},
		{"hold confirmed", holds.ErrHoldConfirmed, CodeHoldAlreadySettled, http.StatusConflict},
		{"hold cancelled", holds.ErrHoldCancelled, CodeAlreadyCancelled, http.StatusConflict},
		{"not hold owner", holds.ErrNotHoldOwner, CodeForbidden, http.StatusForbidden},
		{"operator required", payments.ErrOperatorRequired, CodeForbidden, http.StatusForbidden},
		{"too many seats", holds.ErrTooManySeats, CodeValidation, http.StatusBadRequest},
		{"missing reference", payments.ErrMissingReference, CodeValidation, http.StatusBadRequest},
		{"payment not found", payments.ErrPaymentNotFound, CodePaymentNotFound, http.StatusNotFound},
		{"payment rejected", payments.ErrPaymentRejected, CodePaymentRejected, http.StatusPaymentRequired},
		{"already settled", payments.ErrAlreadySettled, CodeHoldAlreadySettled, http.StatusConflict},
		{"payment closed", payments.ErrPaymentClosed, CodePaymentClosed, http.StatusConflict},
		{"gateway failure", fmt.Errorf("%w: provider returned 503", payments.ErrGateway), CodeGatewayError, http.StatusBadGateway},
		{"settlement race", fmt.Errorf("%w: %s", payments.ErrSettlementRace, holds.ErrHoldExpired), CodeSettlementRace, http.StatusConflict},
		{"unknown error", errors.New("disk on fire"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := MapError(tt.err)
			if code != tt.wantCode || status != tt.wantStatus {
				t.Errorf("MapError(%v) = (%s, %d), want (%s, %d)", tt.err, code, status, tt.wantCode, tt.wantStatus)
			}
		})
	}
}

// The settlement race carries the losing cause in its message only. If it
// ever wrapped the hold sentinel, clients would see HOLD_EXPIRED instead of
// SETTLEMENT_RACE and never learn a refund is due.
func TestSettlementRaceDoesNotLeakHoldSentinel(t *testing.T) {
	err := fmt.Errorf("%w: %s", payments.ErrSettlementRace, holds.ErrHoldExpired)
	if errors.Is(err, holds.ErrHoldExpired) {
		t.Fatal("settlement race error must not wrap the hold sentinel")
	}
	code, _ := MapError(err)
	if code != CodeSettlementRace {
		t.Errorf("code = %s, want %s", code, CodeSettlementRace)
	}
}

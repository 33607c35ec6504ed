package reservations

import (
	"errors"
	"net/http"

	"buslane/internal/holds"
	"buslane/internal/payments"
	"buslane/internal/seats"
	"buslane/internal/trips"
)

// Machine-readable error codes returned to clients. Clients branch on
// these, never on the message text.
const (
	CodeSeatsUnavailable   = "SEATS_UNAVAILABLE"
	CodeTripNotFound       = "TRIP_NOT_FOUND"
	CodeTripNotBookable    = "TRIP_NOT_BOOKABLE"
	CodeHoldNotFound       = "HOLD_NOT_FOUND"
	CodeHoldExpired        = "HOLD_EXPIRED"
	CodeHoldAlreadySettled = "HOLD_ALREADY_SETTLED"
	CodeAlreadyCancelled   = "ALREADY_CANCELLED"
	CodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	CodePaymentRejected    = "PAYMENT_REJECTED"
	CodePaymentClosed      = "PAYMENT_CLOSED"
	CodeGatewayError       = "GATEWAY_ERROR"
	CodeSettlementRace     = "SETTLEMENT_RACE"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

var ErrTripNotBookable = errors.New("trip is not open for reservations")

// MapError translates domain errors into a stable code and HTTP status.
func MapError(err error) (code string, httpStatus int) {
	var unavailable *seats.SeatUnavailableError

	switch {
	case errors.As(err, &unavailable):
		return CodeSeatsUnavailable, http.StatusConflict
	case errors.Is(err, trips.ErrTripNotFound):
		return CodeTripNotFound, http.StatusNotFound
	case errors.Is(err, ErrTripNotBookable):
		return CodeTripNotBookable, http.StatusConflict
	case errors.Is(err, holds.ErrHoldNotFound):
		return CodeHoldNotFound, http.StatusNotFound
	case errors.Is(err, holds.ErrHoldExpired):
		return CodeHoldExpired, http.StatusGone
	case errors.Is(err, holds.ErrHoldConfirmed):
		return CodeHoldAlreadySettled, http.StatusConflict
	case errors.Is(err, holds.ErrHoldCancelled):
		return CodeAlreadyCancelled, http.StatusConflict
	case errors.Is(err, holds.ErrNotHoldOwner),
		errors.Is(err, payments.ErrNotPaymentCustomer),
		errors.Is(err, payments.ErrOperatorRequired):
		return CodeForbidden, http.StatusForbidden
	case errors.Is(err, holds.ErrNoSeatsRequested),
		errors.Is(err, holds.ErrTooManySeats),
		errors.Is(err, holds.ErrDuplicateSeats),
		errors.Is(err, holds.ErrSeatsNotInTrip),
		errors.Is(err, payments.ErrMissingReference):
		return CodeValidation, http.StatusBadRequest
	case errors.Is(err, payments.ErrSettlementRace):
		return CodeSettlementRace, http.StatusConflict
	case errors.Is(err, payments.ErrPaymentNotFound):
		return CodePaymentNotFound, http.StatusNotFound
	case errors.Is(err, payments.ErrPaymentRejected):
		return CodePaymentRejected, http.StatusPaymentRequired
	case errors.Is(err, payments.ErrAlreadySettled):
		return CodeHoldAlreadySettled, http.StatusConflict
	case errors.Is(err, payments.ErrPaymentClosed):
		return CodePaymentClosed, http.StatusConflict
	case errors.Is(err, payments.ErrGateway):
		return CodeGatewayError, http.StatusBadGateway
	default:
		return CodeInternal, http.StatusInternalServerError
	}
}

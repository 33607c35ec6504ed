package holds

import (
	"errors"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"pending to confirmed", StatusPendingPayment, StatusConfirmed, true},
		{"pending to cancelled", StatusPendingPayment, StatusCancelled, true},
		{"pending to expired", StatusPendingPayment, StatusExpired, true},
		{"confirmed is immutable", StatusConfirmed, StatusCancelled, false},
		{"cancelled is immutable", StatusCancelled, StatusExpired, false},
		{"expired is immutable", StatusExpired, StatusConfirmed, false},
		{"expired cannot reopen", StatusExpired, StatusPendingPayment, false},
		{"pending cannot loop", StatusPendingPayment, StatusPendingPayment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if StatusPendingPayment.IsTerminal() {
		t.Error("pending payment should not be terminal")
	}
	for _, s := range []Status{StatusConfirmed, StatusCancelled, StatusExpired} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestTerminalError(t *testing.T) {
	if err := TerminalError(StatusConfirmed); !errors.Is(err, ErrHoldConfirmed) {
		t.Errorf("TerminalError(confirmed) = %v, want ErrHoldConfirmed", err)
	}
	if err := TerminalError(StatusCancelled); !errors.Is(err, ErrHoldCancelled) {
		t.Errorf("TerminalError(cancelled) = %v, want ErrHoldCancelled", err)
	}
	if err := TerminalError(StatusExpired); !errors.Is(err, ErrHoldExpired) {
		t.Errorf("TerminalError(expired) = %v, want ErrHoldExpired", err)
	}
}

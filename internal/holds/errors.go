package holds

import "errors"

var (
	ErrHoldNotFound = errors.New("hold not found")

	// ErrHoldExpired covers both cases: the sweeper already marked the hold
	// EXPIRED, or the lease deadline passed and the sweeper has not run yet.
	ErrHoldExpired = errors.New("hold has expired")

	ErrHoldConfirmed = errors.New("hold is already confirmed")
	ErrHoldCancelled = errors.New("hold is already cancelled")

	ErrNotHoldOwner = errors.New("hold belongs to a different customer")

	ErrNoSeatsRequested  = errors.New("at least one seat must be requested")
	ErrTooManySeats      = errors.New("requested seat count exceeds the per-hold limit")
	ErrDuplicateSeats    = errors.New("duplicate seats in request")
	ErrSeatsNotInTrip    = errors.New("one or more seats do not belong to the trip")
	ErrInvalidTransition = errors.New("invalid hold status transition")
)

// TerminalError maps a terminal status to the sentinel a caller should see
// when attempting to act on a closed hold.
func TerminalError(s Status) error {
	switch s {
	case StatusConfirmed:
		return ErrHoldConfirmed
	case StatusCancelled:
		return ErrHoldCancelled
	case StatusExpired:
		return ErrHoldExpired
	default:
		return ErrInvalidTransition
	}
}

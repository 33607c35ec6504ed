package holds

// Status is the lifecycle state of a hold. PENDING_PAYMENT is the only
// non-terminal state; the other three are terminal and immutable.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusConfirmed      Status = "CONFIRMED"
	StatusCancelled      Status = "CANCELLED"
	StatusExpired        Status = "EXPIRED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s != StatusPendingPayment && s.IsValid()
}

// CanTransitionTo enforces the one-way lifecycle: the only legal moves are
// out of PENDING_PAYMENT into a terminal state.
func (s Status) CanTransitionTo(target Status) bool {
	if s != StatusPendingPayment {
		return false
	}
	switch target {
	case StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

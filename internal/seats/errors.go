package seats

import (
	"fmt"
	"strings"
)

// SeatUnavailableError reports a hold attempt that lost the race for one or
// more seats. The whole request fails; no partial holds are ever left behind.
type SeatUnavailableError struct {
	// Labels of the seats that blocked the request.
	Seats []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Seats, ", "))
}

// NewSeatUnavailableError builds the error from the blocking seat labels
func NewSeatUnavailableError(labels []string) *SeatUnavailableError {
	return &SeatUnavailableError{Seats: labels}
}

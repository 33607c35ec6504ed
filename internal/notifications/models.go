package notifications

import (
	"encoding/json"
	"time"
)

// Reservation event types
const (
	EventReservationConfirmed = "RESERVATION_CONFIRMED"
	EventReservationCancelled = "RESERVATION_CANCELLED"
	EventReservationExpired   = "RESERVATION_EXPIRED"
)

// ReservationEvent is published whenever a hold reaches a terminal state.
// Consumers use it to email customers and keep downstream reporting in
// sync; delivery is at-least-once.
type ReservationEvent struct {
	Type       string    `json:"type"`
	HoldID     string    `json:"hold_id"`
	CustomerID string    `json:"customer_id"`
	TripID     string    `json:"trip_id"`
	Seats      []string  `json:"seats"`
	Total      float64   `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e *ReservationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey keeps all events for one hold on the same partition so
// consumers see them in order.
func (e *ReservationEvent) PartitionKey() string {
	return e.HoldID
}

// CompensationEvent is published when money was captured for a hold that
// could not be confirmed. An operator (or a downstream refund worker)
// picks it up and reverses the charge.
type CompensationEvent struct {
	PaymentID         string    `json:"payment_id"`
	HoldID            string    `json:"hold_id"`
	CustomerID        string    `json:"customer_id"`
	ExternalReference string    `json:"external_reference,omitempty"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	Reason            string    `json:"reason"`
	OccurredAt        time.Time `json:"occurred_at"`
}

func (e *CompensationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *CompensationEvent) PartitionKey() string {
	return e.PaymentID
}

package reservations

import (
	"time"

	"buslane/internal/holds"
	"buslane/internal/payments"
)

type SeatInfo struct {
	SeatID string  `json:"seat_id"`
	Label  string  `json:"label"`
	Price  float64 `json:"price"`
}

type ReservationResponse struct {
	HoldID           string       `json:"hold_id"`
	TripID           string       `json:"trip_id"`
	CustomerID       string       `json:"customer_id"`
	Status           holds.Status `json:"status"`
	Seats            []SeatInfo   `json:"seats"`
	Total            float64      `json:"total"`
	CreatedAt        time.Time    `json:"created_at"`
	ExpiresAt        time.Time    `json:"expires_at"`
	SecondsRemaining int          `json:"seconds_remaining"`

	Payment *payments.PaymentResponse `json:"payment,omitempty"`
}

func toReservationResponse(hold *holds.Hold, now time.Time) *ReservationResponse {
	seats := make([]SeatInfo, 0, len(hold.Seats))
	for _, hs := range hold.Seats {
		seats = append(seats, SeatInfo{
			SeatID: hs.SeatID.String(),
			Label:  hs.Label,
			Price:  hs.Price,
		})
	}
	return &ReservationResponse{
		HoldID:           hold.ID.String(),
		TripID:           hold.TripID.String(),
		CustomerID:       hold.CustomerID.String(),
		Status:           hold.Status,
		Seats:            seats,
		Total:            hold.TotalPrice(),
		CreatedAt:        hold.CreatedAt,
		ExpiresAt:        hold.ExpiresAt,
		SecondsRemaining: hold.SecondsRemaining(now),
	}
}

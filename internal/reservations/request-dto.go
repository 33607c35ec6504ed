package reservations

type ReserveSeatsRequest struct {
	TripID  string   `json:"trip_id" binding:"required,uuid"`
	SeatIDs []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

type BeginPaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=GATEWAY CASH BANK_TRANSFER"`
}

type ConfirmPaymentRequest struct {
	ExternalReference string `json:"external_reference" binding:"omitempty,max=255"`
}

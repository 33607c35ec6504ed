package holds

import (
	"time"

	"github.com/google/uuid"
)

// Hold is a time-bounded exclusive claim on a set of seats pending payment.
// The lease is fixed at creation: ExpiresAt = CreatedAt + lease, never
// renewed. Once a hold reaches a terminal status it is immutable; retrying
// means creating a new hold.
type Hold struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null" json:"customer_id"`
	TripID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"trip_id"`
	Status     Status     `gorm:"type:varchar(20);check:status IN ('PENDING_PAYMENT', 'CONFIRMED', 'CANCELLED', 'EXPIRED');default:'PENDING_PAYMENT'" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`

	// Relationships
	Seats []HoldSeat `json:"seats,omitempty" gorm:"foreignKey:HoldID;constraint:OnDelete:CASCADE;"`
}

// HoldSeat pins one seat to a hold with the price captured at hold time
type HoldSeat struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HoldID uuid.UUID `gorm:"type:uuid;index;not null" json:"hold_id"`
	SeatID uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	Label  string    `gorm:"not null" json:"label"`
	Price  float64   `gorm:"not null" json:"price"`
}

// TableName sets the table name for Hold
func (Hold) TableName() string {
	return "holds"
}

// TableName sets the table name for HoldSeat
func (HoldSeat) TableName() string {
	return "hold_seats"
}

func (h *Hold) IsPending() bool {
	return h.Status == StatusPendingPayment
}

// IsExpiredAt reports whether the lease deadline has passed at the given
// instant, regardless of whether the sweeper has marked the hold yet.
func (h *Hold) IsExpiredAt(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// SecondsRemaining returns the advisory countdown for status polling.
// The authoritative deadline is ExpiresAt, enforced server-side.
func (h *Hold) SecondsRemaining(now time.Time) int {
	if !h.IsPending() {
		return 0
	}
	remaining := int(h.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SeatIDs returns the ids of all seats pinned to this hold
func (h *Hold) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.Seats))
	for _, hs := range h.Seats {
		ids = append(ids, hs.SeatID)
	}
	return ids
}

// TotalPrice sums the captured per-seat prices
func (h *Hold) TotalPrice() float64 {
	var total float64
	for _, hs := range h.Seats {
		total += hs.Price
	}
	return total
}

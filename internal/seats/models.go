package seats

import (
	"time"

	"github.com/google/uuid"
)

// State is the authoritative lifecycle state of a seat on a trip.
// Transitions happen only through hold ledger operations, never directly.
type State string

const (
	StateFree State = "FREE"
	StateHeld State = "HELD"
	StateSold State = "SOLD"
)

func (s State) IsValid() bool {
	switch s {
	case StateFree, StateHeld, StateSold:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}

// Seat defines the structure for individual seats on a trip
type Seat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TripID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_trip_seat" json:"trip_id"`
	Label     string    `gorm:"not null;uniqueIndex:idx_trip_seat" json:"label"`
	State     State     `gorm:"type:varchar(10);check:state IN ('FREE', 'HELD', 'SOLD');default:'FREE'" json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsFree() bool {
	return s.State == StateFree
}

// SeatView is the per-seat availability payload for the seat map endpoint.
// HeldBy carries the lock value from Redis when the seat is on hold, so
// support tooling can trace which hold owns it.
type SeatView struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	State  string `json:"state"`
	HeldBy string `json:"held_by,omitempty"`
}

// ToView converts a Seat plus its lock info to a SeatView
func (s *Seat) ToView(lockValue string) SeatView {
	state := s.State
	if state == StateFree && lockValue != "" {
		// Postgres says free but a fresh hold already owns the lock.
		// The mirror leads the authoritative write by at most one txn.
		state = StateHeld
	}
	return SeatView{
		ID:     s.ID.String(),
		Label:  s.Label,
		State:  state.String(),
		HeldBy: lockValue,
	}
}

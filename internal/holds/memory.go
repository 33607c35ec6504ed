package holds

import (
	"context"
	"sync"
	"time"

	"buslane/internal/seats"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository with the same transactional
// semantics as the Postgres implementation. Used by tests.
type MemoryRepository struct {
	mu    sync.Mutex
	holds map[uuid.UUID]*Hold
	seats map[uuid.UUID]*seats.Seat
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		holds: make(map[uuid.UUID]*Hold),
		seats: make(map[uuid.UUID]*seats.Seat),
	}
}

// SeedSeats registers free seats for a trip and returns their ids in
// label order.
func (m *MemoryRepository) SeedSeats(tripID uuid.UUID, labels ...string) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(labels))
	for _, label := range labels {
		s := &seats.Seat{
			ID:     uuid.New(),
			TripID: tripID,
			Label:  label,
			State:  seats.StateFree,
		}
		m.seats[s.ID] = s
		ids = append(ids, s.ID)
	}
	return ids
}

// SeatState reports the current state of a seeded seat.
func (m *MemoryRepository) SeatState(seatID uuid.UUID) seats.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.seats[seatID]; ok {
		return s.State
	}
	return ""
}

func (m *MemoryRepository) TryHold(_ context.Context, hold *Hold, seatIDs []uuid.UUID, unitPrice float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]*seats.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		s, ok := m.seats[id]
		if !ok || s.TripID != hold.TripID {
			return ErrSeatsNotInTrip
		}
		rows = append(rows, s)
	}

	var blocked []string
	for _, s := range rows {
		if s.State != seats.StateFree {
			blocked = append(blocked, s.Label)
		}
	}
	if len(blocked) > 0 {
		return seats.NewSeatUnavailableError(blocked)
	}

	hold.Status = StatusPendingPayment
	hold.Seats = make([]HoldSeat, 0, len(rows))
	for _, s := range rows {
		s.State = seats.StateHeld
		hold.Seats = append(hold.Seats, HoldSeat{
			ID:     uuid.New(),
			HoldID: hold.ID,
			SeatID: s.ID,
			Label:  s.Label,
			Price:  unitPrice,
		})
	}
	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}
	cp := *hold
	m.holds[hold.ID] = &cp
	return nil
}

func (m *MemoryRepository) Settle(_ context.Context, holdID uuid.UUID, now time.Time) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hold, ok := m.holds[holdID]
	if !ok {
		return nil, ErrHoldNotFound
	}
	if hold.Status != StatusPendingPayment {
		return nil, TerminalError(hold.Status)
	}
	if !hold.ExpiresAt.After(now) {
		return nil, ErrHoldExpired
	}

	hold.Status = StatusConfirmed
	closed := now
	hold.ClosedAt = &closed
	for _, hs := range hold.Seats {
		if s, ok := m.seats[hs.SeatID]; ok {
			s.State = seats.StateSold
		}
	}
	cp := *hold
	return &cp, nil
}

func (m *MemoryRepository) ReleaseAndMark(_ context.Context, holdID uuid.UUID, target Status, now time.Time) (*Hold, error) {
	if !StatusPendingPayment.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	hold, ok := m.holds[holdID]
	if !ok {
		return nil, ErrHoldNotFound
	}
	if hold.Status != StatusPendingPayment {
		if hold.Status == target {
			cp := *hold
			return &cp, nil
		}
		return nil, TerminalError(hold.Status)
	}

	hold.Status = target
	closed := now
	hold.ClosedAt = &closed
	for _, hs := range hold.Seats {
		if s, ok := m.seats[hs.SeatID]; ok && s.State == seats.StateHeld {
			s.State = seats.StateFree
		}
	}
	cp := *hold
	return &cp, nil
}

func (m *MemoryRepository) GetByID(_ context.Context, holdID uuid.UUID) (*Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hold, ok := m.holds[holdID]
	if !ok {
		return nil, ErrHoldNotFound
	}
	cp := *hold
	return &cp, nil
}

func (m *MemoryRepository) FindExpired(_ context.Context, now time.Time, limit int) ([]Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expired []Hold
	for _, hold := range m.holds {
		if hold.Status == StatusPendingPayment && !hold.ExpiresAt.After(now) {
			expired = append(expired, *hold)
			if limit > 0 && len(expired) >= limit {
				break
			}
		}
	}
	return expired, nil
}

func (m *MemoryRepository) SeatLabel(_ context.Context, seatID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[seatID]
	if !ok {
		return "", ErrSeatsNotInTrip
	}
	return s.Label, nil
}

func (m *MemoryRepository) GetActiveByCustomer(_ context.Context, customerID uuid.UUID) ([]Hold, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var active []Hold
	for _, hold := range m.holds {
		if hold.CustomerID == customerID && hold.Status == StatusPendingPayment {
			active = append(active, *hold)
		}
	}
	return active, nil
}

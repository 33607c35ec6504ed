package payments

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests.
type MemoryRepository struct {
	mu            sync.Mutex
	payments      map[uuid.UUID]*Payment
	compensations map[uuid.UUID]*Compensation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		payments:      make(map[uuid.UUID]*Payment),
		compensations: make(map[uuid.UUID]*Compensation),
	}
}

func (m *MemoryRepository) Create(_ context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) GetActiveByHold(_ context.Context, holdID uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Payment
	for _, p := range m.payments {
		if p.HoldID == holdID && p.Status.IsActive() {
			if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
				latest = p
			}
		}
	}
	if latest == nil {
		return nil, ErrPaymentNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryRepository) GetLatestByHold(_ context.Context, holdID uuid.UUID) (*Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Payment
	for _, p := range m.payments {
		if p.HoldID == holdID {
			if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
				latest = p
			}
		}
	}
	if latest == nil {
		return nil, ErrPaymentNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MemoryRepository) Update(_ context.Context, payment *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[payment.ID]; !ok {
		return ErrPaymentNotFound
	}
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *MemoryRepository) CreateCompensation(_ context.Context, comp *Compensation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if comp.ID == uuid.Nil {
		comp.ID = uuid.New()
	}
	cp := *comp
	m.compensations[comp.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListPendingCompensations(_ context.Context) ([]Compensation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []Compensation
	for _, c := range m.compensations {
		if c.Status == CompensationPending {
			pending = append(pending, *c)
		}
	}
	return pending, nil
}

func (m *MemoryRepository) ResolveCompensation(_ context.Context, id, operatorID uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.compensations[id]
	if !ok || c.Status != CompensationPending {
		return errors.New("compensation not found or already resolved")
	}
	c.Status = CompensationResolved
	c.ResolvedAt = &now
	c.ResolvedBy = &operatorID
	return nil
}

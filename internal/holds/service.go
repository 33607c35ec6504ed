package holds

import (
	"context"
	"errors"
	"time"

	"buslane/internal/notifications"
	"buslane/internal/seats"
	"buslane/internal/shared/config"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

// SeatLocker mirrors seat claims into Redis so concurrent requests fail
// fast and seat maps show live holds. The database stays authoritative;
// a mirror failure is logged, never fatal.
type SeatLocker interface {
	AtomicHoldSeats(ctx context.Context, seatIDs []uuid.UUID, customerID, holdID, tripID string, ttl time.Duration) error
	AtomicReleaseHold(ctx context.Context, holdID string) (int, error)
}

// SeatMapInvalidator drops cached seat maps after a seat transition.
type SeatMapInvalidator interface {
	InvalidateSeatMap(ctx context.Context, tripID string)
}

type CreateHoldParams struct {
	CustomerID uuid.UUID
	TripID     uuid.UUID
	SeatIDs    []uuid.UUID
	SeatPrice  float64
}

type Service interface {
	CreateHold(ctx context.Context, params CreateHoldParams) (*Hold, error)
	GetHold(ctx context.Context, holdID uuid.UUID) (*Hold, error)

	// Settle confirms a pending, unexpired hold. Exactly one of Settle and
	// Expire wins for any given hold.
	Settle(ctx context.Context, holdID uuid.UUID) (*Hold, error)

	// Cancel voluntarily releases a pending hold. Only the owning customer
	// may cancel; repeating a cancel is a no-op.
	Cancel(ctx context.Context, holdID, customerID uuid.UUID) (*Hold, error)

	// Expire closes a hold whose lease deadline has passed and frees its
	// seats. Safe to call on already-expired holds.
	Expire(ctx context.Context, holdID uuid.UUID) error

	// ActiveForCustomer lists the customer's open holds.
	ActiveForCustomer(ctx context.Context, customerID uuid.UUID) ([]Hold, error)

	FindExpired(ctx context.Context) ([]Hold, error)
	Now() time.Time
}

type service struct {
	repo        Repository
	locks       SeatLocker
	seatMaps    SeatMapInvalidator
	producer    notifications.Producer
	cfg         *config.ReservationConfig
	logger      *logger.Logger
	now         func() time.Time
	expiryBatch int
}

func NewService(repo Repository, locks SeatLocker, seatMaps SeatMapInvalidator, producer notifications.Producer, cfg *config.ReservationConfig, log *logger.Logger) Service {
	return &service{
		repo:        repo,
		locks:       locks,
		seatMaps:    seatMaps,
		producer:    producer,
		cfg:         cfg,
		logger:      log,
		now:         time.Now,
		expiryBatch: 100,
	}
}

func (s *service) Now() time.Time {
	return s.now()
}

func (s *service) CreateHold(ctx context.Context, params CreateHoldParams) (*Hold, error) {
	if len(params.SeatIDs) == 0 {
		return nil, ErrNoSeatsRequested
	}
	if s.cfg.MaxSeatsPerHold > 0 && len(params.SeatIDs) > s.cfg.MaxSeatsPerHold {
		return nil, ErrTooManySeats
	}
	seen := make(map[uuid.UUID]struct{}, len(params.SeatIDs))
	for _, id := range params.SeatIDs {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateSeats
		}
		seen[id] = struct{}{}
	}

	// The lease is anchored to the service clock on both ends so
	// ExpiresAt is always exactly CreatedAt plus the lease.
	now := s.now()
	hold := &Hold{
		ID:         uuid.New(),
		CustomerID: params.CustomerID,
		TripID:     params.TripID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.HoldLease),
	}

	// Fast-fail against the Redis mirror before touching the database.
	mirrored := false
	if s.locks != nil {
		err := s.locks.AtomicHoldSeats(ctx, params.SeatIDs, params.CustomerID.String(), hold.ID.String(), params.TripID.String(), s.cfg.HoldLease)
		var conflict *seats.LockConflictError
		if errors.As(err, &conflict) {
			return nil, seats.NewSeatUnavailableError([]string{s.conflictLabel(ctx, conflict.SeatID)})
		}
		if err != nil {
			s.logger.Warn("seat lock mirror unavailable, relying on database", "error", err, "trip_id", params.TripID)
		} else {
			mirrored = true
		}
	}

	if err := s.repo.TryHold(ctx, hold, params.SeatIDs, params.SeatPrice); err != nil {
		if mirrored {
			if _, relErr := s.locks.AtomicReleaseHold(ctx, hold.ID.String()); relErr != nil {
				s.logger.Warn("failed to release seat locks after rejected hold", "error", relErr, "hold_id", hold.ID)
			}
		}
		return nil, err
	}

	s.invalidate(ctx, params.TripID)
	s.logger.LogHoldCreated(ctx, hold.ID.String(), params.TripID.String(), params.CustomerID.String(), len(params.SeatIDs), hold.ExpiresAt)
	return hold, nil
}

func (s *service) GetHold(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	return s.repo.GetByID(ctx, holdID)
}

func (s *service) Settle(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.Settle(ctx, holdID, s.now())
	if err != nil {
		return nil, err
	}

	s.releaseLocks(ctx, holdID)
	s.invalidate(ctx, hold.TripID)
	s.publish(ctx, notifications.EventReservationConfirmed, hold)
	s.logger.Info("hold settled", "hold_id", hold.ID, "customer_id", hold.CustomerID, "total", hold.TotalPrice())
	return hold, nil
}

func (s *service) Cancel(ctx context.Context, holdID, customerID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if customerID != uuid.Nil && hold.CustomerID != customerID {
		return nil, ErrNotHoldOwner
	}
	if hold.IsPending() && hold.IsExpiredAt(s.now()) {
		// Deadline already passed. The sweeper owns this hold; close it
		// as expired rather than cancelled.
		if err := s.Expire(ctx, holdID); err != nil {
			return nil, err
		}
		return nil, ErrHoldExpired
	}

	hold, err = s.repo.ReleaseAndMark(ctx, holdID, StatusCancelled, s.now())
	if err != nil {
		return nil, err
	}

	s.releaseLocks(ctx, holdID)
	s.invalidate(ctx, hold.TripID)
	s.publish(ctx, notifications.EventReservationCancelled, hold)
	s.logger.Info("hold cancelled", "hold_id", holdID, "customer_id", hold.CustomerID)
	return hold, nil
}

func (s *service) Expire(ctx context.Context, holdID uuid.UUID) error {
	hold, err := s.repo.ReleaseAndMark(ctx, holdID, StatusExpired, s.now())
	if err != nil {
		return err
	}

	s.releaseLocks(ctx, holdID)
	s.invalidate(ctx, hold.TripID)
	s.publish(ctx, notifications.EventReservationExpired, hold)
	s.logger.LogHoldExpired(ctx, hold.ID.String(), len(hold.Seats))
	return nil
}

func (s *service) ActiveForCustomer(ctx context.Context, customerID uuid.UUID) ([]Hold, error) {
	return s.repo.GetActiveByCustomer(ctx, customerID)
}

func (s *service) FindExpired(ctx context.Context) ([]Hold, error) {
	return s.repo.FindExpired(ctx, s.now(), s.expiryBatch)
}

// conflictLabel resolves a mirror-reported seat id to its display label,
// falling back to the raw id when the lookup fails.
func (s *service) conflictLabel(ctx context.Context, seatID string) string {
	id, err := uuid.Parse(seatID)
	if err != nil {
		return seatID
	}
	label, err := s.repo.SeatLabel(ctx, id)
	if err != nil {
		return seatID
	}
	return label
}

func (s *service) releaseLocks(ctx context.Context, holdID uuid.UUID) {
	if s.locks == nil {
		return
	}
	if _, err := s.locks.AtomicReleaseHold(ctx, holdID.String()); err != nil {
		s.logger.Warn("failed to release seat locks", "error", err, "hold_id", holdID)
	}
}

func (s *service) invalidate(ctx context.Context, tripID uuid.UUID) {
	if s.seatMaps != nil {
		s.seatMaps.InvalidateSeatMap(ctx, tripID.String())
	}
}

func (s *service) publish(ctx context.Context, eventType string, hold *Hold) {
	if s.producer == nil {
		return
	}
	labels := make([]string, 0, len(hold.Seats))
	for _, hs := range hold.Seats {
		labels = append(labels, hs.Label)
	}
	evt := notifications.ReservationEvent{
		Type:       eventType,
		HoldID:     hold.ID.String(),
		CustomerID: hold.CustomerID.String(),
		TripID:     hold.TripID.String(),
		Seats:      labels,
		Total:      hold.TotalPrice(),
		OccurredAt: s.now(),
	}
	if err := s.producer.PublishReservation(ctx, evt); err != nil {
		s.logger.Warn("failed to publish reservation event", "error", err, "hold_id", hold.ID, "type", eventType)
	}
}

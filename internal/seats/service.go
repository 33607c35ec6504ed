package seats

import (
	"context"
	"fmt"

	"buslane/internal/shared/constants"
	"buslane/pkg/cache"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

// Service exposes read-side seat inventory operations. All state
// transitions go through the hold ledger, never through this service.
type Service interface {
	GetSeatMap(ctx context.Context, tripID string) ([]SeatView, error)
	InvalidateSeatMap(ctx context.Context, tripID string)
}

type service struct {
	repo         Repository
	locks        *AtomicLocks
	cacheService cache.Service
}

func NewService(repo Repository, locks *AtomicLocks, cacheService cache.Service) Service {
	return &service{
		repo:         repo,
		locks:        locks,
		cacheService: cacheService,
	}
}

// GetSeatMap returns the effective state of every seat on a trip:
// Postgres state overlaid with live Redis hold locks.
func (s *service) GetSeatMap(ctx context.Context, tripID string) ([]SeatView, error) {
	tripUUID, err := uuid.Parse(tripID)
	if err != nil {
		return nil, fmt.Errorf("invalid trip ID: %w", err)
	}

	cacheKey := constants.BuildSeatMapKey(tripID)
	if s.cacheService != nil {
		var cached []SeatView
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	seatRows, err := s.repo.GetSeatsByTripID(ctx, tripUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}

	var seatIDs []uuid.UUID
	for _, seat := range seatRows {
		seatIDs = append(seatIDs, seat.ID)
	}

	var lockValues map[string]string
	if s.locks != nil {
		lockValues, err = s.locks.CheckSeatLocks(ctx, seatIDs)
		if err != nil {
			// The mirror is an optimization; fall back to Postgres state only.
			logger.GetDefault().DebugWithContext(ctx, "seat lock check failed, serving db state",
				map[string]interface{}{"trip_id": tripID, "error": err.Error()})
			lockValues = map[string]string{}
		}
	}

	views := make([]SeatView, 0, len(seatRows))
	for _, seat := range seatRows {
		views = append(views, seat.ToView(lockValues[seat.ID.String()]))
	}

	if s.cacheService != nil {
		_ = s.cacheService.Set(ctx, cacheKey, views, constants.TTL_SEATMAP_AVAILABLE)
	}

	return views, nil
}

// InvalidateSeatMap drops the cached seat map after a state transition
func (s *service) InvalidateSeatMap(ctx context.Context, tripID string) {
	if s.cacheService == nil {
		return
	}
	_ = s.cacheService.Delete(ctx, constants.BuildSeatMapKey(tripID))
}

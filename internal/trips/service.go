package trips

import (
	"context"
	"fmt"

	"buslane/internal/seats"
	"buslane/internal/shared/constants"
	"buslane/pkg/cache"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

var seatColumns = []string{"A", "B", "C", "D", "E", "F"}

type Service interface {
	CreateTrip(ctx context.Context, adminID uuid.UUID, req CreateTripRequest) (*TripResponse, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (*TripResponse, error)
	ListTrips(ctx context.Context, query TripListQuery) (*PaginatedTrips, error)
	CancelTrip(ctx context.Context, tripID uuid.UUID) error
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error
}

type service struct {
	repo     Repository
	seatRepo seats.Repository
	cache    cache.Service
	logger   *logger.Logger
}

func NewService(repo Repository, seatRepo seats.Repository, cacheService cache.Service, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		seatRepo: seatRepo,
		cache:    cacheService,
		logger:   log,
	}
}

// CreateTrip creates the trip and provisions one free seat row per
// physical seat. Seats are labelled row-number plus column letter, "1A"
// through e.g. "12D".
func (s *service) CreateTrip(ctx context.Context, adminID uuid.UUID, req CreateTripRequest) (*TripResponse, error) {
	trip := &Trip{
		ID:           uuid.New(),
		Origin:       req.Origin,
		Destination:  req.Destination,
		DepartureAt:  req.DepartureAt,
		VehicleLabel: req.VehicleLabel,
		SeatRows:     req.SeatRows,
		SeatsPerRow:  req.SeatsPerRow,
		SeatPrice:    req.SeatPrice,
		Status:       StatusScheduled,
		CreatedBy:    adminID,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	seatRows := make([]seats.Seat, 0, trip.TotalSeats())
	for row := 1; row <= trip.SeatRows; row++ {
		for col := 0; col < trip.SeatsPerRow; col++ {
			seatRows = append(seatRows, seats.Seat{
				ID:     uuid.New(),
				TripID: trip.ID,
				Label:  fmt.Sprintf("%d%s", row, seatColumns[col]),
				State:  seats.StateFree,
			})
		}
	}
	if err := s.seatRepo.CreateSeats(ctx, seatRows); err != nil {
		// Orphan trip without seats is unusable; remove it.
		if delErr := s.repo.Delete(ctx, trip.ID); delErr != nil {
			s.logger.Error("failed to remove trip after seat provisioning failure", "error", delErr, "trip_id", trip.ID)
		}
		return nil, fmt.Errorf("failed to provision seats: %w", err)
	}

	s.logger.Info("trip created", "trip_id", trip.ID, "seats", trip.TotalSeats(), "admin_id", adminID)

	resp := trip.ToResponse()
	resp.AvailableSeats = trip.TotalSeats()
	return &resp, nil
}

func (s *service) GetTrip(ctx context.Context, tripID uuid.UUID) (*TripResponse, error) {
	var trip Trip
	err := s.cache.GetOrSet(ctx, constants.BuildTripDetailKey(tripID.String()), constants.TTL_TRIP_DETAIL,
		func() (interface{}, error) {
			t, err := s.repo.GetByID(ctx, tripID)
			if err != nil {
				return nil, err
			}
			return t, nil
		}, &trip)
	if err != nil {
		return nil, err
	}

	resp := trip.ToResponse()
	// Availability is live, never cached with the metadata.
	free, err := s.seatRepo.CountByTripAndState(ctx, tripID, seats.StateFree)
	if err != nil {
		s.logger.Warn("failed to count free seats", "error", err, "trip_id", tripID)
	} else {
		resp.AvailableSeats = int(free)
	}
	return &resp, nil
}

func (s *service) ListTrips(ctx context.Context, query TripListQuery) (*PaginatedTrips, error) {
	trips, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	responses := make([]TripResponse, 0, len(trips))
	for i := range trips {
		resp := trips[i].ToResponse()
		if free, err := s.seatRepo.CountByTripAndState(ctx, trips[i].ID, seats.StateFree); err == nil {
			resp.AvailableSeats = int(free)
		}
		responses = append(responses, resp)
	}

	return &PaginatedTrips{
		Trips:      responses,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *service) CancelTrip(ctx context.Context, tripID uuid.UUID) error {
	if err := s.repo.UpdateStatus(ctx, tripID, StatusCancelled); err != nil {
		return err
	}
	s.invalidate(ctx, tripID)
	s.logger.Info("trip cancelled", "trip_id", tripID)
	return nil
}

func (s *service) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	if err := s.seatRepo.DeleteSeatsByTripID(ctx, tripID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tripID); err != nil {
		return err
	}
	s.invalidate(ctx, tripID)
	s.logger.Info("trip deleted", "trip_id", tripID)
	return nil
}

func (s *service) invalidate(ctx context.Context, tripID uuid.UUID) {
	if err := s.cache.Delete(ctx, constants.BuildTripDetailKey(tripID.String())); err != nil {
		s.logger.Debug("failed to invalidate trip cache", "error", err, "trip_id", tripID)
	}
	if err := s.cache.Delete(ctx, constants.BuildSeatMapKey(tripID.String())); err != nil {
		s.logger.Debug("failed to invalidate seat map cache", "error", err, "trip_id", tripID)
	}
}

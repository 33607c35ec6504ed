package reservations

import (
	"context"

	"buslane/internal/holds"
	"buslane/internal/payments"
	"buslane/internal/trips"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a facade operation
type Actor struct {
	ID         uuid.UUID
	IsOperator bool
}

// Service is the customer-facing reservation workflow. It composes the
// trip catalogue, the hold ledger and the payment coordinator; it holds
// no state of its own.
type Service interface {
	ReserveSeats(ctx context.Context, customerID uuid.UUID, req ReserveSeatsRequest) (*ReservationResponse, error)
	BeginPayment(ctx context.Context, customerID, holdID uuid.UUID, method payments.Method) (*payments.PaymentResponse, error)
	ConfirmPayment(ctx context.Context, actor Actor, paymentID uuid.UUID, externalReference string) (*payments.PaymentResponse, error)
	CancelReservation(ctx context.Context, customerID, holdID uuid.UUID) (*ReservationResponse, error)
	GetHoldStatus(ctx context.Context, actor Actor, holdID uuid.UUID) (*ReservationResponse, error)
	ListActiveReservations(ctx context.Context, customerID uuid.UUID) ([]*ReservationResponse, error)
}

type service struct {
	tripRepo       trips.Repository
	holdService    holds.Service
	paymentService payments.Service
	logger         *logger.Logger
}

func NewService(tripRepo trips.Repository, holdService holds.Service, paymentService payments.Service, log *logger.Logger) Service {
	return &service{
		tripRepo:       tripRepo,
		holdService:    holdService,
		paymentService: paymentService,
		logger:         log,
	}
}

func (s *service) ReserveSeats(ctx context.Context, customerID uuid.UUID, req ReserveSeatsRequest) (*ReservationResponse, error) {
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, trips.ErrTripNotFound
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != trips.StatusScheduled || !trip.DepartureAt.After(s.holdService.Now()) {
		return nil, ErrTripNotBookable
	}

	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, holds.ErrSeatsNotInTrip
		}
		seatIDs = append(seatIDs, id)
	}

	hold, err := s.holdService.CreateHold(ctx, holds.CreateHoldParams{
		CustomerID: customerID,
		TripID:     tripID,
		SeatIDs:    seatIDs,
		SeatPrice:  trip.SeatPrice,
	})
	if err != nil {
		return nil, err
	}

	return toReservationResponse(hold, s.holdService.Now()), nil
}

func (s *service) BeginPayment(ctx context.Context, customerID, holdID uuid.UUID, method payments.Method) (*payments.PaymentResponse, error) {
	return s.paymentService.CreatePayment(ctx, holdID, customerID, method)
}

func (s *service) ConfirmPayment(ctx context.Context, actor Actor, paymentID uuid.UUID, externalReference string) (*payments.PaymentResponse, error) {
	return s.paymentService.ConfirmPayment(ctx, payments.ConfirmParams{
		PaymentID:         paymentID,
		ExternalReference: externalReference,
		ActorID:           actor.ID,
		IsOperator:        actor.IsOperator,
	})
}

func (s *service) CancelReservation(ctx context.Context, customerID, holdID uuid.UUID) (*ReservationResponse, error) {
	hold, err := s.holdService.Cancel(ctx, holdID, customerID)
	if err != nil {
		return nil, err
	}
	return toReservationResponse(hold, s.holdService.Now()), nil
}

func (s *service) GetHoldStatus(ctx context.Context, actor Actor, holdID uuid.UUID) (*ReservationResponse, error) {
	hold, err := s.holdService.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOperator && hold.CustomerID != actor.ID {
		return nil, holds.ErrNotHoldOwner
	}

	now := s.holdService.Now()
	resp := toReservationResponse(hold, now)

	// A pending hold past its deadline reads as expired even before the
	// sweeper closes it.
	if hold.IsPending() && hold.IsExpiredAt(now) {
		resp.Status = holds.StatusExpired
		resp.SecondsRemaining = 0
	}

	if payment, err := s.paymentService.GetPaymentByHold(ctx, holdID); err == nil {
		resp.Payment = payment
	}
	return resp, nil
}

func (s *service) ListActiveReservations(ctx context.Context, customerID uuid.UUID) ([]*ReservationResponse, error) {
	active, err := s.holdService.ActiveForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := s.holdService.Now()
	out := make([]*ReservationResponse, 0, len(active))
	for i := range active {
		hold := &active[i]
		resp := toReservationResponse(hold, now)
		if hold.IsPending() && hold.IsExpiredAt(now) {
			resp.Status = holds.StatusExpired
			resp.SecondsRemaining = 0
		}
		out = append(out, resp)
	}
	return out, nil
}

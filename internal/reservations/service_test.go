package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"buslane/internal/holds"
	"buslane/internal/notifications"
	"buslane/internal/payments"
	"buslane/internal/shared/config"
	"buslane/internal/trips"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

// fakeTripRepo serves trips from memory; the facade only reads.
type fakeTripRepo struct {
	trips map[uuid.UUID]*trips.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[uuid.UUID]*trips.Trip)}
}

func (f *fakeTripRepo) Create(_ context.Context, trip *trips.Trip) error {
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	f.trips[trip.ID] = trip
	return nil
}

func (f *fakeTripRepo) GetByID(_ context.Context, id uuid.UUID) (*trips.Trip, error) {
	trip, ok := f.trips[id]
	if !ok {
		return nil, trips.ErrTripNotFound
	}
	return trip, nil
}

func (f *fakeTripRepo) List(context.Context, trips.TripListQuery) ([]trips.Trip, int64, error) {
	return nil, 0, nil
}

func (f *fakeTripRepo) UpdateStatus(_ context.Context, id uuid.UUID, status trips.TripStatus) error {
	trip, ok := f.trips[id]
	if !ok {
		return trips.ErrTripNotFound
	}
	trip.Status = status
	return nil
}

func (f *fakeTripRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.trips, id)
	return nil
}

type facadeFixture struct {
	tripRepo *fakeTripRepo
	holdRepo *holds.MemoryRepository
	service  Service
}

func newFacadeFixture(t *testing.T) *facadeFixture {
	t.Helper()
	cfg := &config.ReservationConfig{
		HoldLease:       5 * time.Minute,
		MaxSeatsPerHold: 4,
		Currency:        "INR",
	}
	log := logger.GetDefault()
	producer := notifications.NewNoopProducer()

	tripRepo := newFakeTripRepo()
	holdRepo := holds.NewMemoryRepository()
	holdService := holds.NewService(holdRepo, nil, nil, producer, cfg, log)
	paymentService := payments.NewService(payments.NewMemoryRepository(), payments.NewStubGateway(), holdService, producer, cfg, log)

	return &facadeFixture{
		tripRepo: tripRepo,
		holdRepo: holdRepo,
		service:  NewService(tripRepo, holdService, paymentService, log),
	}
}

func (f *facadeFixture) seedTrip(t *testing.T, status trips.TripStatus, departure time.Time) (*trips.Trip, []uuid.UUID) {
	t.Helper()
	trip := &trips.Trip{
		ID:          uuid.New(),
		Origin:      "Mumbai",
		Destination: "Pune",
		DepartureAt: departure,
		SeatRows:    1,
		SeatsPerRow: 2,
		SeatPrice:   450,
		Status:      status,
		CreatedBy:   uuid.New(),
	}
	if err := f.tripRepo.Create(context.Background(), trip); err != nil {
		t.Fatalf("seed trip failed: %v", err)
	}
	seatIDs := f.holdRepo.SeedSeats(trip.ID, "1A", "1B")
	return trip, seatIDs
}

func seatIDStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func TestReserveSeats(t *testing.T) {
	f := newFacadeFixture(t)
	trip, seatIDs := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(24*time.Hour))
	customerID := uuid.New()

	resp, err := f.service.ReserveSeats(context.Background(), customerID, ReserveSeatsRequest{
		TripID:  trip.ID.String(),
		SeatIDs: seatIDStrings(seatIDs),
	})
	if err != nil {
		t.Fatalf("ReserveSeats failed: %v", err)
	}
	if resp.Status != holds.StatusPendingPayment {
		t.Errorf("status = %s, want %s", resp.Status, holds.StatusPendingPayment)
	}
	if resp.Total != 900 {
		t.Errorf("total = %v, want 900", resp.Total)
	}
	if len(resp.Seats) != 2 {
		t.Errorf("seats = %d, want 2", len(resp.Seats))
	}
	if resp.SecondsRemaining <= 0 {
		t.Errorf("seconds_remaining = %d, want > 0", resp.SecondsRemaining)
	}
}

func TestReserveSeatsUnbookableTrips(t *testing.T) {
	f := newFacadeFixture(t)
	customerID := uuid.New()

	departed, departedSeats := f.seedTrip(t, trips.StatusDeparted, time.Now().Add(24*time.Hour))
	cancelled, cancelledSeats := f.seedTrip(t, trips.StatusCancelled, time.Now().Add(24*time.Hour))
	past, pastSeats := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(-time.Hour))

	tests := []struct {
		name    string
		tripID  string
		seatIDs []string
		want    error
	}{
		{"unknown trip", uuid.NewString(), []string{uuid.NewString()}, trips.ErrTripNotFound},
		{"departed trip", departed.ID.String(), seatIDStrings(departedSeats), ErrTripNotBookable},
		{"cancelled trip", cancelled.ID.String(), seatIDStrings(cancelledSeats), ErrTripNotBookable},
		{"past departure", past.ID.String(), seatIDStrings(pastSeats), ErrTripNotBookable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ReserveSeats(context.Background(), customerID, ReserveSeatsRequest{
				TripID:  tt.tripID,
				SeatIDs: tt.seatIDs,
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("ReserveSeats error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReservationPaymentFlow(t *testing.T) {
	f := newFacadeFixture(t)
	trip, seatIDs := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(24*time.Hour))
	customerID := uuid.New()

	reservation, err := f.service.ReserveSeats(context.Background(), customerID, ReserveSeatsRequest{
		TripID:  trip.ID.String(),
		SeatIDs: seatIDStrings(seatIDs),
	})
	if err != nil {
		t.Fatalf("ReserveSeats failed: %v", err)
	}
	holdID := uuid.MustParse(reservation.HoldID)

	payment, err := f.service.BeginPayment(context.Background(), customerID, holdID, payments.MethodGateway)
	if err != nil {
		t.Fatalf("BeginPayment failed: %v", err)
	}

	actor := Actor{ID: customerID}
	confirmed, err := f.service.ConfirmPayment(context.Background(), actor, uuid.MustParse(payment.ID), "")
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if confirmed.Status != payments.StatusSettled {
		t.Errorf("payment status = %s, want %s", confirmed.Status, payments.StatusSettled)
	}

	status, err := f.service.GetHoldStatus(context.Background(), actor, holdID)
	if err != nil {
		t.Fatalf("GetHoldStatus failed: %v", err)
	}
	if status.Status != holds.StatusConfirmed {
		t.Errorf("hold status = %s, want %s", status.Status, holds.StatusConfirmed)
	}
	if status.Payment == nil || status.Payment.Status != payments.StatusSettled {
		t.Error("hold status should carry the settled payment")
	}

	// A settled reservation cannot be cancelled away.
	if _, err := f.service.CancelReservation(context.Background(), customerID, holdID); !errors.Is(err, holds.ErrHoldConfirmed) {
		t.Errorf("CancelReservation after settle = %v, want ErrHoldConfirmed", err)
	}
}

func TestGetHoldStatusVisibility(t *testing.T) {
	f := newFacadeFixture(t)
	trip, seatIDs := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(24*time.Hour))
	customerID := uuid.New()

	reservation, err := f.service.ReserveSeats(context.Background(), customerID, ReserveSeatsRequest{
		TripID:  trip.ID.String(),
		SeatIDs: seatIDStrings(seatIDs),
	})
	if err != nil {
		t.Fatalf("ReserveSeats failed: %v", err)
	}
	holdID := uuid.MustParse(reservation.HoldID)

	// Other customers cannot see the hold; operators can.
	if _, err := f.service.GetHoldStatus(context.Background(), Actor{ID: uuid.New()}, holdID); !errors.Is(err, holds.ErrNotHoldOwner) {
		t.Errorf("stranger GetHoldStatus = %v, want ErrNotHoldOwner", err)
	}
	if _, err := f.service.GetHoldStatus(context.Background(), Actor{ID: uuid.New(), IsOperator: true}, holdID); err != nil {
		t.Errorf("operator GetHoldStatus failed: %v", err)
	}
}

func TestListActiveReservations(t *testing.T) {
	f := newFacadeFixture(t)
	customerID := uuid.New()

	first, firstSeats := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(24*time.Hour))
	second, secondSeats := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(48*time.Hour))

	for _, booking := range []struct {
		trip    *trips.Trip
		seatIDs []uuid.UUID
	}{{first, firstSeats}, {second, secondSeats}} {
		if _, err := f.service.ReserveSeats(context.Background(), customerID, ReserveSeatsRequest{
			TripID:  booking.trip.ID.String(),
			SeatIDs: seatIDStrings(booking.seatIDs),
		}); err != nil {
			t.Fatalf("ReserveSeats failed: %v", err)
		}
	}

	active, err := f.service.ListActiveReservations(context.Background(), customerID)
	if err != nil {
		t.Fatalf("ListActiveReservations failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active reservations = %d, want 2", len(active))
	}

	// Other customers see only their own.
	other, err := f.service.ListActiveReservations(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListActiveReservations failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("stranger sees %d reservations, want 0", len(other))
	}
}

func TestCancelReservation(t *testing.T) {
	f := newFacadeFixture(t)
	trip, seatIDs := f.seedTrip(t, trips.StatusScheduled, time.Now().Add(24*time.Hour))
	customerID := uuid.New()

	reservation, err := f.service.ReserveSeats(context.Background(), customerID, ReserveSeatsRequest{
		TripID:  trip.ID.String(),
		SeatIDs: seatIDStrings(seatIDs),
	})
	if err != nil {
		t.Fatalf("ReserveSeats failed: %v", err)
	}
	holdID := uuid.MustParse(reservation.HoldID)

	cancelled, err := f.service.CancelReservation(context.Background(), customerID, holdID)
	if err != nil {
		t.Fatalf("CancelReservation failed: %v", err)
	}
	if cancelled.Status != holds.StatusCancelled {
		t.Errorf("status = %s, want %s", cancelled.Status, holds.StatusCancelled)
	}

	// Freed seats can be picked up by the next customer.
	if _, err := f.service.ReserveSeats(context.Background(), uuid.New(), ReserveSeatsRequest{
		TripID:  trip.ID.String(),
		SeatIDs: seatIDStrings(seatIDs),
	}); err != nil {
		t.Fatalf("re-reserving freed seats failed: %v", err)
	}
}

package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"buslane/internal/holds"
	"buslane/internal/notifications"
	"buslane/internal/shared/config"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

type fixture struct {
	repo        *MemoryRepository
	holdRepo    *holds.MemoryRepository
	holdService holds.Service
	gateway     Gateway
	service     Service
	cfg         *config.ReservationConfig
}

func newFixture(t *testing.T, lease time.Duration) *fixture {
	t.Helper()
	cfg := &config.ReservationConfig{
		HoldLease:       lease,
		MaxSeatsPerHold: 4,
		Currency:        "INR",
	}
	holdRepo := holds.NewMemoryRepository()
	holdService := holds.NewService(holdRepo, nil, nil, notifications.NewNoopProducer(), cfg, logger.GetDefault())
	repo := NewMemoryRepository()
	gateway := NewStubGateway()
	svc := NewService(repo, gateway, holdService, notifications.NewNoopProducer(), cfg, logger.GetDefault())
	return &fixture{
		repo:        repo,
		holdRepo:    holdRepo,
		holdService: holdService,
		gateway:     gateway,
		service:     svc,
		cfg:         cfg,
	}
}

func (f *fixture) createHold(t *testing.T, customerID uuid.UUID) *holds.Hold {
	t.Helper()
	tripID := uuid.New()
	seatIDs := f.holdRepo.SeedSeats(tripID, "1A", "1B")
	hold, err := f.holdService.CreateHold(context.Background(), holds.CreateHoldParams{
		CustomerID: customerID,
		TripID:     tripID,
		SeatIDs:    seatIDs,
		SeatPrice:  450,
	})
	if err != nil {
		t.Fatalf("CreateHold failed: %v", err)
	}
	return hold
}

func TestCreatePaymentGateway(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	resp, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if resp.Status != StatusCreated {
		t.Errorf("status = %s, want %s", resp.Status, StatusCreated)
	}
	if resp.Amount != 900 {
		t.Errorf("amount = %v, want 900", resp.Amount)
	}
	if resp.ClientSecret == "" {
		t.Error("gateway payment should carry a client secret")
	}
	if resp.ExternalReference == nil || *resp.ExternalReference == "" {
		t.Error("gateway payment should record the intent reference")
	}

	// Retrying with the same method returns the open attempt.
	again, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if err != nil {
		t.Fatalf("repeated CreatePayment failed: %v", err)
	}
	if again.ID != resp.ID {
		t.Errorf("repeated create returned payment %s, want %s", again.ID, resp.ID)
	}

	// Switching methods abandons the gateway attempt.
	cash, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodCash)
	if err != nil {
		t.Fatalf("CreatePayment with new method failed: %v", err)
	}
	if cash.Status != StatusAwaitingSettlement {
		t.Errorf("cash status = %s, want %s", cash.Status, StatusAwaitingSettlement)
	}
	old, err := f.repo.GetByID(context.Background(), uuid.MustParse(resp.ID))
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if old.Status != StatusCancelled {
		t.Errorf("abandoned payment status = %s, want %s", old.Status, StatusCancelled)
	}
}

func TestCreatePaymentOwnership(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	hold := f.createHold(t, uuid.New())

	_, err := f.service.CreatePayment(context.Background(), hold.ID, uuid.New(), MethodGateway)
	if !errors.Is(err, holds.ErrNotHoldOwner) {
		t.Errorf("CreatePayment by stranger = %v, want ErrNotHoldOwner", err)
	}
}

func TestCreatePaymentOnOverdueHold(t *testing.T) {
	// A negative lease makes every hold overdue the moment it is created.
	f := newFixture(t, -time.Minute)
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	_, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if !errors.Is(err, holds.ErrHoldExpired) {
		t.Fatalf("CreatePayment on overdue hold = %v, want ErrHoldExpired", err)
	}

	// The overdue hold was closed on the spot.
	got, err := f.holdService.GetHold(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("GetHold failed: %v", err)
	}
	if got.Status != holds.StatusExpired {
		t.Errorf("hold status = %s, want %s", got.Status, holds.StatusExpired)
	}
}

func TestConfirmPaymentSettles(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	created, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paymentID := uuid.MustParse(created.ID)

	resp, err := f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID: paymentID,
		ActorID:   customerID,
	})
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if resp.Status != StatusSettled {
		t.Errorf("status = %s, want %s", resp.Status, StatusSettled)
	}
	if resp.SettledAt == nil {
		t.Error("settled payment should record settled_at")
	}

	got, err := f.holdService.GetHold(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("GetHold failed: %v", err)
	}
	if got.Status != holds.StatusConfirmed {
		t.Errorf("hold status = %s, want %s", got.Status, holds.StatusConfirmed)
	}

	// Replaying the confirm is idempotent.
	replay, err := f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID: paymentID,
		ActorID:   customerID,
	})
	if err != nil {
		t.Fatalf("replayed ConfirmPayment failed: %v", err)
	}
	if replay.Status != StatusSettled || replay.ID != resp.ID {
		t.Error("replayed confirm should return the settled payment unchanged")
	}

	// A conflicting reference on a settled payment is an error, not a
	// silent overwrite.
	_, err = f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID:         paymentID,
		ExternalReference: "some-other-receipt",
		ActorID:           customerID,
	})
	if !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("conflicting replay = %v, want ErrAlreadySettled", err)
	}
}

func TestConfirmManualPayment(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	created, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodCash)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paymentID := uuid.MustParse(created.ID)

	// Customers cannot vouch for their own cash.
	_, err = f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID:         paymentID,
		ExternalReference: "receipt-17",
		ActorID:           customerID,
	})
	if !errors.Is(err, ErrOperatorRequired) {
		t.Fatalf("customer confirm of cash = %v, want ErrOperatorRequired", err)
	}

	operatorID := uuid.New()
	_, err = f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID:  paymentID,
		ActorID:    operatorID,
		IsOperator: true,
	})
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("operator confirm without receipt = %v, want ErrMissingReference", err)
	}

	resp, err := f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID:         paymentID,
		ExternalReference: "receipt-17",
		ActorID:           operatorID,
		IsOperator:        true,
	})
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if resp.Status != StatusSettled {
		t.Errorf("status = %s, want %s", resp.Status, StatusSettled)
	}
	if resp.ExternalReference == nil || *resp.ExternalReference != "receipt-17" {
		t.Error("settled manual payment should record the receipt reference")
	}
}

// decliningGateway issues intents but declines every capture.
type decliningGateway struct {
	stub Gateway
}

func (g *decliningGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	return g.stub.CreateIntent(ctx, req)
}

func (g *decliningGateway) ConfirmIntent(context.Context, string) (*Intent, error) {
	return nil, ErrPaymentRejected
}

func TestConfirmPaymentDeclined(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	f.service = NewService(f.repo, &decliningGateway{stub: NewStubGateway()}, f.holdService, notifications.NewNoopProducer(), f.cfg, logger.GetDefault())
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	created, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paymentID := uuid.MustParse(created.ID)

	_, err = f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID: paymentID,
		ActorID:   customerID,
	})
	if !errors.Is(err, ErrPaymentRejected) {
		t.Fatalf("declined confirm = %v, want ErrPaymentRejected", err)
	}

	payment, err := f.repo.GetByID(context.Background(), paymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if payment.Status != StatusFailed {
		t.Errorf("payment status = %s, want %s", payment.Status, StatusFailed)
	}

	// A declined card leaves the hold pending: the customer can retry with
	// another method until the lease runs out.
	got, err := f.holdService.GetHold(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("GetHold failed: %v", err)
	}
	if got.Status != holds.StatusPendingPayment {
		t.Errorf("hold status = %s, want %s", got.Status, holds.StatusPendingPayment)
	}
}

// racingHoldService reports the hold as pending but loses the settle, as if
// the sweeper claimed the hold between capture and settlement.
type racingHoldService struct {
	holds.Service
}

func (r *racingHoldService) Settle(context.Context, uuid.UUID) (*holds.Hold, error) {
	return nil, holds.ErrHoldExpired
}

func TestConfirmPaymentSettlementRace(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	created, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paymentID := uuid.MustParse(created.ID)

	f.service = NewService(f.repo, f.gateway, &racingHoldService{Service: f.holdService}, notifications.NewNoopProducer(), f.cfg, logger.GetDefault())

	_, err = f.service.ConfirmPayment(context.Background(), ConfirmParams{
		PaymentID: paymentID,
		ActorID:   customerID,
	})
	if !errors.Is(err, ErrSettlementRace) {
		t.Fatalf("racing confirm = %v, want ErrSettlementRace", err)
	}

	payment, err := f.repo.GetByID(context.Background(), paymentID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if payment.Status != StatusFailed {
		t.Errorf("payment status = %s, want %s", payment.Status, StatusFailed)
	}

	pending, err := f.service.ListPendingCompensations(context.Background())
	if err != nil {
		t.Fatalf("ListPendingCompensations failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending compensations = %d, want 1", len(pending))
	}
	comp := pending[0]
	if comp.PaymentID != paymentID || comp.HoldID != hold.ID {
		t.Error("compensation should reference the captured payment and its hold")
	}
	if comp.Amount != 900 || comp.Currency != "INR" {
		t.Errorf("compensation amount = %v %s, want 900 INR", comp.Amount, comp.Currency)
	}

	// An operator can close the refund out.
	operatorID := uuid.New()
	if err := f.service.ResolveCompensation(context.Background(), comp.ID, operatorID); err != nil {
		t.Fatalf("ResolveCompensation failed: %v", err)
	}
	pending, err = f.service.ListPendingCompensations(context.Background())
	if err != nil {
		t.Fatalf("ListPendingCompensations failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending compensations after resolve = %d, want 0", len(pending))
	}
}

func TestCancelPayment(t *testing.T) {
	f := newFixture(t, 5*time.Minute)
	customerID := uuid.New()
	hold := f.createHold(t, customerID)

	created, err := f.service.CreatePayment(context.Background(), hold.ID, customerID, MethodGateway)
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	paymentID := uuid.MustParse(created.ID)

	resp, err := f.service.CancelPayment(context.Background(), paymentID, customerID)
	if err != nil {
		t.Fatalf("CancelPayment failed: %v", err)
	}
	if resp.Status != StatusCancelled {
		t.Errorf("status = %s, want %s", resp.Status, StatusCancelled)
	}

	// The hold is untouched: abandoning a payment attempt is not a
	// cancellation of the reservation.
	got, err := f.holdService.GetHold(context.Background(), hold.ID)
	if err != nil {
		t.Fatalf("GetHold failed: %v", err)
	}
	if got.Status != holds.StatusPendingPayment {
		t.Errorf("hold status = %s, want %s", got.Status, holds.StatusPendingPayment)
	}

	// Repeating the cancel is a no-op.
	if _, err := f.service.CancelPayment(context.Background(), paymentID, customerID); err != nil {
		t.Fatalf("repeated CancelPayment failed: %v", err)
	}
}

package holds

import (
	"context"
	"testing"
	"time"

	"buslane/pkg/logger"

	"github.com/google/uuid"
)

func seedPendingHolds(t *testing.T, repo *MemoryRepository, svc Service, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		tripID := uuid.New()
		seatIDs := repo.SeedSeats(tripID, "1A", "1B")
		hold, err := svc.CreateHold(context.Background(), CreateHoldParams{
			CustomerID: uuid.New(),
			TripID:     tripID,
			SeatIDs:    seatIDs,
			SeatPrice:  450,
		})
		if err != nil {
			t.Fatalf("CreateHold failed: %v", err)
		}
		ids = append(ids, hold.ID)
	}
	return ids
}

func TestSweepOnce(t *testing.T) {
	repo := NewMemoryRepository()
	svc, clock := newTestService(t, repo)
	sweeper := NewSweeper(svc, 30*time.Second, logger.GetDefault())

	ids := seedPendingHolds(t, repo, svc, 3)

	// Nothing is overdue yet.
	if got := sweeper.SweepOnce(context.Background()); got != 0 {
		t.Errorf("SweepOnce before deadline = %d, want 0", got)
	}

	clock.Advance(6 * time.Minute)

	if got := sweeper.SweepOnce(context.Background()); got != 3 {
		t.Errorf("SweepOnce = %d, want 3", got)
	}
	for _, id := range ids {
		hold, err := svc.GetHold(context.Background(), id)
		if err != nil {
			t.Fatalf("GetHold failed: %v", err)
		}
		if hold.Status != StatusExpired {
			t.Errorf("hold %s status = %s, want %s", id, hold.Status, StatusExpired)
		}
	}

	// A second pass finds nothing left to do.
	if got := sweeper.SweepOnce(context.Background()); got != 0 {
		t.Errorf("repeated SweepOnce = %d, want 0", got)
	}
}

// failingExpireService simulates one hold settling concurrently between the
// sweeper's scan and its expire call.
type failingExpireService struct {
	Service
	confirmed uuid.UUID
}

func (f *failingExpireService) Expire(ctx context.Context, holdID uuid.UUID) error {
	if holdID == f.confirmed {
		return ErrHoldConfirmed
	}
	return f.Service.Expire(ctx, holdID)
}

func TestSweepOnceSkipsSettledHolds(t *testing.T) {
	repo := NewMemoryRepository()
	svc, clock := newTestService(t, repo)

	ids := seedPendingHolds(t, repo, svc, 3)
	clock.Advance(6 * time.Minute)

	racing := &failingExpireService{Service: svc, confirmed: ids[1]}
	sweeper := NewSweeper(racing, 30*time.Second, logger.GetDefault())

	// The lost race on the middle hold must not block the others.
	if got := sweeper.SweepOnce(context.Background()); got != 2 {
		t.Errorf("SweepOnce = %d, want 2", got)
	}
	for _, id := range []uuid.UUID{ids[0], ids[2]} {
		hold, err := svc.GetHold(context.Background(), id)
		if err != nil {
			t.Fatalf("GetHold failed: %v", err)
		}
		if hold.Status != StatusExpired {
			t.Errorf("hold %s status = %s, want %s", id, hold.Status, StatusExpired)
		}
	}
}

func TestSweeperStartStopsOnCancel(t *testing.T) {
	repo := NewMemoryRepository()
	svc, _ := newTestService(t, repo)
	sweeper := NewSweeper(svc, time.Millisecond, logger.GetDefault())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}

package holds

import (
	"context"
	"errors"
	"time"

	"buslane/pkg/logger"
)

// Sweeper periodically closes holds whose lease deadline has passed.
// Expiry does not depend on it running: Settle and Cancel check the
// deadline themselves, so the sweeper only reclaims seats and records
// the terminal status.
type Sweeper struct {
	service  Service
	interval time.Duration
	logger   *logger.Logger
}

func NewSweeper(service Service, interval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   log,
	}
}

// Start blocks until ctx is cancelled, sweeping once per interval.
// Run it in its own goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("hold sweeper started", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires every overdue hold it can find. One failing hold does
// not stop the rest of the batch; it stays pending and is retried on the
// next pass.
func (s *Sweeper) SweepOnce(ctx context.Context) (expired int) {
	overdue, err := s.service.FindExpired(ctx)
	if err != nil {
		s.logger.Error("failed to scan for expired holds", "error", err)
		return 0
	}

	for _, hold := range overdue {
		if ctx.Err() != nil {
			return expired
		}
		if err := s.service.Expire(ctx, hold.ID); err != nil {
			// Lost the race to a concurrent settle or cancel. Nothing
			// left to do for this hold.
			if errors.Is(err, ErrHoldConfirmed) || errors.Is(err, ErrHoldCancelled) {
				continue
			}
			s.logger.Error("failed to expire hold", "error", err, "hold_id", hold.ID)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired holds swept", "count", expired)
	}
	return expired
}

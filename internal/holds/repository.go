package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buslane/internal/seats"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the single writer of seat state. Every seat transition
// (FREE -> HELD -> SOLD, HELD -> FREE) happens inside one of its
// transactions together with the owning hold row, so a crash can never
// leave a held seat without a hold or a confirmed hold without sold seats.
type Repository interface {
	// TryHold atomically claims all requested seats and inserts the hold.
	// Either every seat flips FREE -> HELD and the hold row exists, or
	// nothing changed and a *seats.SeatUnavailableError names the blockers.
	TryHold(ctx context.Context, hold *Hold, seatIDs []uuid.UUID, unitPrice float64) error

	// Settle flips a pending, unexpired hold to CONFIRMED and its seats to
	// SOLD. Returns ErrHoldExpired when the lease deadline passed, or the
	// terminal-status sentinel when the hold is already closed.
	Settle(ctx context.Context, holdID uuid.UUID, now time.Time) (*Hold, error)

	// ReleaseAndMark closes a pending hold with the given terminal status
	// and frees its seats. Calling it again with the same status is a
	// no-op; with a different terminal status it returns the sentinel for
	// the status already in place.
	ReleaseAndMark(ctx context.Context, holdID uuid.UUID, target Status, now time.Time) (*Hold, error)

	GetByID(ctx context.Context, holdID uuid.UUID) (*Hold, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]Hold, error)
	GetActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]Hold, error)

	// SeatLabel resolves a seat id to its display label.
	SeatLabel(ctx context.Context, seatID uuid.UUID) (string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) TryHold(ctx context.Context, hold *Hold, seatIDs []uuid.UUID, unitPrice float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []seats.Seat
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND trip_id = ?", seatIDs, hold.TripID).
			Order("label ASC").
			Find(&rows).Error; err != nil {
			return fmt.Errorf("failed to lock seats: %w", err)
		}

		if len(rows) != len(seatIDs) {
			return ErrSeatsNotInTrip
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

		res := tx.Model(&seats.Seat{}).
			Where("id IN ? AND state = ?", seatIDs, seats.StateFree).
			Update("state", seats.StateHeld)
		if res.Error != nil {
			return fmt.Errorf("failed to hold seats: %w", res.Error)
		}
		if res.RowsAffected != int64(len(seatIDs)) {
			// Lost a race between the locked read and the update.
			return seats.NewSeatUnavailableError(nil)
		}

		hold.Status = StatusPendingPayment
		hold.Seats = make([]HoldSeat, 0, len(rows))
		for _, s := range rows {
			hold.Seats = append(hold.Seats, HoldSeat{
				SeatID: s.ID,
				Label:  s.Label,
				Price:  unitPrice,
			})
		}
		if err := tx.Create(hold).Error; err != nil {
			return fmt.Errorf("failed to create hold: %w", err)
		}
		return nil
	})
}

func (r *repository) Settle(ctx context.Context, holdID uuid.UUID, now time.Time) (*Hold, error) {
	var settled *Hold
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Hold{}).
			Where("id = ? AND status = ? AND expires_at > ?", holdID, StatusPendingPayment, now).
			Updates(map[string]interface{}{"status": StatusConfirmed, "closed_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to settle hold: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Guard did not match: hold missing, already closed, or past
			// its deadline. Read back to report which.
			hold, err := getByID(tx, holdID)
			if err != nil {
				return err
			}
			if hold.Status == StatusPendingPayment {
				return ErrHoldExpired
			}
			return TerminalError(hold.Status)
		}

		hold, err := getByID(tx, holdID)
		if err != nil {
			return err
		}
		if err := tx.Model(&seats.Seat{}).
			Where("id IN ?", hold.SeatIDs()).
			Update("state", seats.StateSold).Error; err != nil {
			return fmt.Errorf("failed to mark seats sold: %w", err)
		}
		settled = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

func (r *repository) ReleaseAndMark(ctx context.Context, holdID uuid.UUID, target Status, now time.Time) (*Hold, error) {
	if !StatusPendingPayment.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	var closed *Hold
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Hold{}).
			Where("id = ? AND status = ?", holdID, StatusPendingPayment).
			Updates(map[string]interface{}{"status": target, "closed_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to close hold: %w", res.Error)
		}

		hold, err := getByID(tx, holdID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			if hold.Status == target {
				// Already closed with the requested status. Idempotent.
				closed = hold
				return nil
			}
			return TerminalError(hold.Status)
		}

		if err := tx.Model(&seats.Seat{}).
			Where("id IN ? AND state = ?", hold.SeatIDs(), seats.StateHeld).
			Update("state", seats.StateFree).Error; err != nil {
			return fmt.Errorf("failed to release seats: %w", err)
		}
		closed = hold
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (r *repository) GetByID(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	return getByID(r.db.WithContext(ctx), holdID)
}

func getByID(tx *gorm.DB, holdID uuid.UUID) (*Hold, error) {
	var hold Hold
	if err := tx.Preload("Seats").First(&hold, "id = ?", holdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to get hold: %w", err)
	}
	return &hold, nil
}

func (r *repository) SeatLabel(ctx context.Context, seatID uuid.UUID) (string, error) {
	var seat seats.Seat
	if err := r.db.WithContext(ctx).Select("label").First(&seat, "id = ?", seatID).Error; err != nil {
		return "", fmt.Errorf("failed to resolve seat label: %w", err)
	}
	return seat.Label, nil
}

func (r *repository) FindExpired(ctx context.Context, now time.Time, limit int) ([]Hold, error) {
	var expired []Hold
	query := r.db.WithContext(ctx).Preload("Seats").
		Where("status = ? AND expires_at <= ?", StatusPendingPayment, now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&expired).Error; err != nil {
		return nil, fmt.Errorf("failed to find expired holds: %w", err)
	}
	return expired, nil
}

func (r *repository) GetActiveByCustomer(ctx context.Context, customerID uuid.UUID) ([]Hold, error) {
	var active []Hold
	if err := r.db.WithContext(ctx).Preload("Seats").
		Where("customer_id = ? AND status = ?", customerID, StatusPendingPayment).
		Order("created_at DESC").
		Find(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to list active holds: %w", err)
	}
	return active, nil
}

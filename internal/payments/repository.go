package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetActiveByHold(ctx context.Context, holdID uuid.UUID) (*Payment, error)
	GetLatestByHold(ctx context.Context, holdID uuid.UUID) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error

	CreateCompensation(ctx context.Context, comp *Compensation) error
	ListPendingCompensations(ctx context.Context) ([]Compensation, error)
	ResolveCompensation(ctx context.Context, id, operatorID uuid.UUID, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) GetActiveByHold(ctx context.Context, holdID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("hold_id = ? AND status IN ?", holdID, []Status{StatusCreated, StatusAwaitingSettlement}).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get active payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) GetLatestByHold(ctx context.Context, holdID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("hold_id = ?", holdID).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment for hold: %w", err)
	}
	return &payment, nil
}

func (r *repository) Update(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *repository) CreateCompensation(ctx context.Context, comp *Compensation) error {
	if err := r.db.WithContext(ctx).Create(comp).Error; err != nil {
		return fmt.Errorf("failed to create compensation: %w", err)
	}
	return nil
}

func (r *repository) ListPendingCompensations(ctx context.Context) ([]Compensation, error) {
	var comps []Compensation
	if err := r.db.WithContext(ctx).
		Where("status = ?", CompensationPending).
		Order("created_at ASC").
		Find(&comps).Error; err != nil {
		return nil, fmt.Errorf("failed to list compensations: %w", err)
	}
	return comps, nil
}

func (r *repository) ResolveCompensation(ctx context.Context, id, operatorID uuid.UUID, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&Compensation{}).
		Where("id = ? AND status = ?", id, CompensationPending).
		Updates(map[string]interface{}{
			"status":      CompensationResolved,
			"resolved_at": now,
			"resolved_by": operatorID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to resolve compensation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("compensation not found or already resolved")
	}
	return nil
}

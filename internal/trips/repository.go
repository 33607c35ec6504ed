package trips

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTripNotFound = errors.New("trip not found")

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	List(ctx context.Context, query TripListQuery) ([]Trip, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TripStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trip *Trip) error {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	if err := r.db.WithContext(ctx).First(&trip, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

func (r *repository) List(ctx context.Context, query TripListQuery) ([]Trip, int64, error) {
	db := r.db.WithContext(ctx).Model(&Trip{})

	if query.Origin != "" {
		db = db.Where("origin ILIKE ?", "%"+query.Origin+"%")
	}
	if query.Destination != "" {
		db = db.Where("destination ILIKE ?", "%"+query.Destination+"%")
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			db = db.Where("departure_at >= ?", from)
		}
	}
	if query.DateTo != "" {
		if to, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			db = db.Where("departure_at < ?", to.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	var trips []Trip
	if err := db.Order("departure_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&trips).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status TripStatus) error {
	res := r.db.WithContext(ctx).Model(&Trip{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update trip status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Trip{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete trip: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTripNotFound
	}
	return nil
}

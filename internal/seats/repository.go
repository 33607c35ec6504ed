package seats

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	GetSeatsByTripID(ctx context.Context, tripID uuid.UUID) ([]Seat, error)
	CountByTripAndState(ctx context.Context, tripID uuid.UUID, state State) (int64, error)
	DeleteSeatsByTripID(ctx context.Context, tripID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", seatIDs).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByTripID(ctx context.Context, tripID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CountByTripAndState(ctx context.Context, tripID uuid.UUID, state State) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("trip_id = ? AND state = ?", tripID, state).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteSeatsByTripID(ctx context.Context, tripID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Seat{}, "trip_id = ?", tripID).Error
}

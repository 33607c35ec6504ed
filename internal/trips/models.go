package trips

import (
	"time"

	"github.com/google/uuid"
)

type Trip struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Origin       string     `json:"origin" gorm:"not null;size:255"`
	Destination  string     `json:"destination" gorm:"not null;size:255"`
	DepartureAt  time.Time  `json:"departure_at" gorm:"not null;index"`
	VehicleLabel string     `json:"vehicle_label" gorm:"size:64"`
	SeatRows     int        `json:"seat_rows" gorm:"not null;check:seat_rows > 0"`
	SeatsPerRow  int        `json:"seats_per_row" gorm:"not null;check:seats_per_row > 0"`
	SeatPrice    float64    `json:"seat_price" gorm:"not null;check:seat_price >= 0"`
	Status       TripStatus `json:"status" gorm:"type:varchar(20);default:'scheduled'"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Trip) TableName() string {
	return "trips"
}

func (t *Trip) TotalSeats() int {
	return t.SeatRows * t.SeatsPerRow
}

type TripResponse struct {
	ID             string     `json:"id"`
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	DepartureAt    time.Time  `json:"departure_at"`
	VehicleLabel   string     `json:"vehicle_label"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	SeatPrice      float64    `json:"seat_price"`
	Status         TripStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

type CreateTripRequest struct {
	Origin       string    `json:"origin" binding:"required,min=2,max=255"`
	Destination  string    `json:"destination" binding:"required,min=2,max=255"`
	DepartureAt  time.Time `json:"departure_at" binding:"required"`
	VehicleLabel string    `json:"vehicle_label" binding:"omitempty,max=64"`
	SeatRows     int       `json:"seat_rows" binding:"required,min=1,max=30"`
	SeatsPerRow  int       `json:"seats_per_row" binding:"required,min=1,max=6"`
	SeatPrice    float64   `json:"seat_price" binding:"required,min=0"`
}

type TripListQuery struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	Status      string `form:"status" binding:"omitempty,oneof=scheduled departed cancelled"`
}

type PaginatedTrips struct {
	Trips      []TripResponse `json:"trips"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

// ToResponse converts a Trip to its API shape. AvailableSeats is populated
// separately by the service layer.
func (t *Trip) ToResponse() TripResponse {
	return TripResponse{
		ID:           t.ID.String(),
		Origin:       t.Origin,
		Destination:  t.Destination,
		DepartureAt:  t.DepartureAt,
		VehicleLabel: t.VehicleLabel,
		TotalSeats:   t.TotalSeats(),
		SeatPrice:    t.SeatPrice,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
	}
}

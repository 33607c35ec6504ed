package database

import (
	"buslane/internal/customers"
	"buslane/internal/holds"
	"buslane/internal/payments"
	"buslane/internal/seats"
	"buslane/internal/trips"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&customers.Customer{},
		&trips.Trip{},
		&seats.Seat{},
		&holds.Hold{},
		&holds.HoldSeat{},
		&payments.Payment{},
		&payments.Compensation{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}

package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	// Sweeper scan: pending holds ordered by deadline
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_holds_pending_expiry
		ON holds (expires_at)
		WHERE status = 'PENDING_PAYMENT';
	`).Error
	if err != nil {
		return err
	}

	// One settled payment per hold
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_settled_payment_per_hold
		ON payments (hold_id)
		WHERE status = 'SETTLED';
	`).Error
	if err != nil {
		return err
	}

	// A seat can be pinned by at most one open hold; checked in the hold
	// transaction, this index keeps the lookup cheap
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_hold_seats_seat_id
		ON hold_seats (seat_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}

package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Deposit{},
		&FraudCheck{},
		&Offerer{},
		&Venue{},
		&UserOfferer{},
		&Offer{},
		&Stock{},
		&Booking{},
	)
	if err != nil {
		return err
	}

	// At most one active booking per (user, stock). AutoMigrate cannot
	// express a partial index, so it is created directly.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_user_stock_active
		 ON bookings (user_id, stock_id) WHERE is_cancelled = false`,
	).Error
}

package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Tenant{},
		&Membership{},
		&Subscription{},
		&QrCode{},
		&ScanEvent{},
		&DailyAnalytics{},
		&MenuCategory{},
		&MenuItem{},
	); err != nil {
		return err
	}

	// One active code per physical table, platform-wide. Partial so that
	// codes without a table (generic tenant codes) never collide.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_qr_codes_table_id " +
			"ON qr_codes (table_id) WHERE table_id IS NOT NULL",
	).Error; err != nil {
		return err
	}

	// Case-insensitive unique slug for non-soft-deleted tenants.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_tenants_slug_lower " +
			"ON tenants ((lower(slug))) WHERE deleted_at IS NULL",
	).Error
}

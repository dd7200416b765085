package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunClickHouseMigrations creates the event tables directly instead of using
// GORM's AutoMigrate, which misbehaves against the ClickHouse driver.
func RunClickHouseMigrations(db *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS parcel_events (
			id String,
			parcel_id UInt64,
			parcel_code String,
			seller_id UInt64,
			from_status String,
			to_status String,
			actor_id String,
			comment String,
			occurred_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = MergeTree()
		ORDER BY (parcel_id, occurred_at)`,

		`CREATE TABLE IF NOT EXISTS sms_events (
			id String,
			seller_id UInt64,
			parcel_id UInt64,
			phone String,
			status String,
			occurred_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = MergeTree()
		ORDER BY (seller_id, occurred_at)`,
	}

	for _, query := range queries {
		if err := db.Exec(query).Error; err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

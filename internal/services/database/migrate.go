package database

import (
	"fmt"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
)

// AutoMigrate creates or updates the relational schema. Event tables live in
// ClickHouse and are migrated separately.
func (db *DB) AutoMigrate() error {
	err := db.DB.AutoMigrate(
		&models.User{},
		&models.City{},
		&models.Parcel{},
		&models.DeliverySlip{},
		&models.Product{},
		&models.StockMovement{},
		&models.SmsSettings{},
		&models.SmsTemplate{},
		&models.SmsMessage{},
		&models.APIKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

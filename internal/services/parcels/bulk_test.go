package parcels

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "parcels.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.City{}, &models.Parcel{}))
	return db
}

func seedParcel(t *testing.T, db *gorm.DB, code string, status models.ParcelStatus) *models.Parcel {
	t.Helper()
	parcel := &models.Parcel{
		Code:           code,
		SellerID:       1,
		RecipientName:  "Nadia",
		RecipientPhone: "+212600000004",
		CityID:         1,
		Address:        "3 Rue Atlas",
		Quantity:       1,
		Price:          120,
		DeliveryFee:    25,
		Status:         status,
	}
	require.NoError(t, db.Create(parcel).Error)
	return parcel
}

func TestBulkChangeStatusPartialSuccess(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil, nil, nil, nil)

	pending := seedParcel(t, db, "DLV-BULK000001", models.ParcelStatusPending)
	delivered := seedParcel(t, db, "DLV-BULK000002", models.ParcelStatusDelivered)

	result, err := svc.BulkChangeStatus(context.Background(), "3", &models.ParcelBulkStatusRequest{
		ParcelIDs: []uint{pending.ID, delivered.ID},
		Status:    models.ParcelStatusReceived,
	})
	require.NoError(t, err)

	// One invalid parcel never rolls back the rest.
	assert.Equal(t, []uint{pending.ID}, result.Updated)
	require.Contains(t, result.Failed, delivered.ID)
	assert.Contains(t, result.Failed[delivered.ID], "transition not allowed")

	var reloaded models.Parcel
	require.NoError(t, db.First(&reloaded, pending.ID).Error)
	assert.Equal(t, models.ParcelStatusReceived, reloaded.Status)
}

package sms

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type blockingGateway struct {
	release chan struct{}
}

func (g *blockingGateway) Send(ctx context.Context, phone, sender, body string) error {
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newSmsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sms.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SmsSettings{}, &models.SmsTemplate{}, &models.SmsMessage{}))
	return db
}

func TestNotifyStatusChangeDoesNotBlockOnGateway(t *testing.T) {
	db := newSmsTestDB(t)
	gateway := &blockingGateway{release: make(chan struct{})}
	svc := NewService(db, gateway, "DELIVERY")

	settings := &models.SmsSettings{SellerID: 1, Enabled: true, EnabledStatuses: "IN_TRANSIT"}
	require.NoError(t, db.Create(settings).Error)

	parcel := &models.Parcel{
		ID:             9,
		Code:           "DLV-TEST000003",
		SellerID:       1,
		RecipientPhone: "+212600000003",
	}

	done := make(chan struct{})
	go func() {
		svc.NotifyStatusChange(context.Background(), parcel, models.ParcelStatusInTransit)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("status-change notification blocked on the gateway")
	}

	// The message sits QUEUED while the provider is still busy.
	var message models.SmsMessage
	require.NoError(t, db.Where("seller_id = ?", 1).First(&message).Error)
	assert.Equal(t, messageStatusQueued, message.Status)

	close(gateway.release)
	require.Eventually(t, func() bool {
		var m models.SmsMessage
		return db.First(&m, message.ID).Error == nil && m.Status == messageStatusSent
	}, 2*time.Second, 20*time.Millisecond)
}

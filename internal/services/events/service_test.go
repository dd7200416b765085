package events

import (
	"context"
	"testing"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDisabledService(t *testing.T) {
	svc := NewService(nil)

	assert.False(t, svc.Enabled())
	assert.NoError(t, svc.RecordParcelEvent(context.Background(), &models.ParcelEvent{}))

	_, err := svc.ParcelHistory(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEventStoreDisabled)

	_, err = svc.StatusCounts(context.Background(), 1, 30)
	assert.ErrorIs(t, err, ErrEventStoreDisabled)

	// Close on a synchronous service is a no-op.
	svc.Close()
	svc.Close()
}

func TestBatchingFallsBackToSync(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
	}{
		{"nil db", 100},
		{"batch size of one", 1},
		{"zero batch size", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBatchingService(nil, tt.batchSize, time.Second)
			assert.Nil(t, svc.queue, "no batch writer should start")
		})
	}
}

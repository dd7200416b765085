package deliveryslips

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSlipStatusMachine(t *testing.T) {
	tests := []struct {
		name    string
		from    models.SlipStatus
		to      models.SlipStatus
		allowed bool
	}{
		{"open closes", models.SlipStatusOpen, models.SlipStatusClosed, true},
		{"closed reopens", models.SlipStatusClosed, models.SlipStatusOpen, true},
		{"closed dispatches", models.SlipStatusClosed, models.SlipStatusDispatched, true},
		{"open cannot dispatch", models.SlipStatusOpen, models.SlipStatusDispatched, false},
		{"dispatched completes", models.SlipStatusDispatched, models.SlipStatusCompleted, true},
		{"dispatched cannot reopen", models.SlipStatusDispatched, models.SlipStatusOpen, false},
		{"completed is final", models.SlipStatusCompleted, models.SlipStatusOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusScannable(t *testing.T) {
	assert.True(t, statusScannable(models.SlipTypeDelivery, models.ParcelStatusReceived))
	assert.False(t, statusScannable(models.SlipTypeDelivery, models.ParcelStatusPending))
	assert.True(t, statusScannable(models.SlipTypePickup, models.ParcelStatusPending))
	assert.True(t, statusScannable(models.SlipTypeReturn, models.ParcelStatusRefused))
	assert.False(t, statusScannable(models.SlipTypeReturn, models.ParcelStatusDelivered))
}

func TestGenerateSlipCode(t *testing.T) {
	assert.Regexp(t, `^DS-[0-9A-F]{8}$`, generateSlipCode(models.SlipTypeDelivery))
	assert.Regexp(t, `^PS-[0-9A-F]{8}$`, generateSlipCode(models.SlipTypePickup))
	assert.Regexp(t, `^RS-[0-9A-F]{8}$`, generateSlipCode(models.SlipTypeReturn))
}

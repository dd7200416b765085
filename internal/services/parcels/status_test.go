package parcels

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParcelStatusMachine(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ParcelStatus
		to      models.ParcelStatus
		allowed bool
	}{
		{"pending received", models.ParcelStatusPending, models.ParcelStatusReceived, true},
		{"pending cancelled", models.ParcelStatusPending, models.ParcelStatusCancelled, true},
		{"pending cannot skip to delivered", models.ParcelStatusPending, models.ParcelStatusDelivered, false},
		{"received dispatched", models.ParcelStatusReceived, models.ParcelStatusDispatched, true},
		{"dispatched back to received", models.ParcelStatusDispatched, models.ParcelStatusReceived, true},
		{"in transit delivered", models.ParcelStatusInTransit, models.ParcelStatusDelivered, true},
		{"in transit refused", models.ParcelStatusInTransit, models.ParcelStatusRefused, true},
		{"in transit cannot cancel", models.ParcelStatusInTransit, models.ParcelStatusCancelled, false},
		{"refused returned", models.ParcelStatusRefused, models.ParcelStatusReturned, true},
		{"delivered is final", models.ParcelStatusDelivered, models.ParcelStatusReturned, false},
		{"cancelled is final", models.ParcelStatusCancelled, models.ParcelStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParcelStatusTerminal(t *testing.T) {
	assert.True(t, models.ParcelStatusDelivered.IsTerminal())
	assert.True(t, models.ParcelStatusReturned.IsTerminal())
	assert.True(t, models.ParcelStatusCancelled.IsTerminal())
	assert.False(t, models.ParcelStatusPending.IsTerminal())
	assert.False(t, models.ParcelStatusRefused.IsTerminal())
}

func TestValidParcelStatus(t *testing.T) {
	assert.True(t, models.ValidParcelStatus(models.ParcelStatusInTransit))
	assert.False(t, models.ValidParcelStatus(models.ParcelStatus("LOST")))
}

func TestGenerateParcelCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateParcelCode()
		assert.Regexp(t, `^DLV-[0-9A-F]{10}$`, code)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestParcelFilterNormalize(t *testing.T) {
	f := &models.ParcelFilter{Page: 0, PageSize: 0}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 25, f.PageSize)

	f = &models.ParcelFilter{Page: 3, PageSize: 500}
	f.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 25, f.PageSize)
}

package users

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    access.AccountStatus
		to      access.AccountStatus
		allowed bool
	}{
		{"pending to inactive", access.AccountStatusPending, access.AccountStatusInactive, true},
		{"pending to rejected", access.AccountStatusPending, access.AccountStatusRejected, true},
		{"pending straight to active", access.AccountStatusPending, access.AccountStatusActive, false},
		{"inactive to pending validation", access.AccountStatusInactive, access.AccountStatusPendingValidation, true},
		{"pending validation approved", access.AccountStatusPendingValidation, access.AccountStatusActive, true},
		{"pending validation rejected", access.AccountStatusPendingValidation, access.AccountStatusRejected, true},
		{"active to suspended", access.AccountStatusActive, access.AccountStatusSuspended, true},
		{"suspended reinstated", access.AccountStatusSuspended, access.AccountStatusActive, true},
		{"suspended cannot skip to validation", access.AccountStatusSuspended, access.AccountStatusPendingValidation, false},
		{"rejected reapplies", access.AccountStatusRejected, access.AccountStatusPending, true},
		{"active backwards to inactive", access.AccountStatusActive, access.AccountStatusInactive, false},
		{"no self loop", access.AccountStatusActive, access.AccountStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsKnownStatus(t *testing.T) {
	assert.True(t, isKnownStatus(access.AccountStatusSuspended))
	assert.False(t, isKnownStatus(access.AccountStatus("BANANA")))
	assert.False(t, isKnownStatus(access.AccountStatus("")))
}

package config

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGuardPaths(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		paths := guardPaths(models.GuardConfig{})

		assert.Equal(t, "/auth/login", paths.Login)
		assert.Equal(t, "/profile/complete", paths.CompleteProfile)
		assert.Equal(t, "/dashboard", paths.Landing)
		assert.Equal(t, "/unauthorized", paths.Unauthorized)
	})

	t.Run("partial override keeps remaining defaults", func(t *testing.T) {
		paths := guardPaths(models.GuardConfig{
			LoginPath:   "/signin",
			LandingPath: "/home",
		})

		assert.Equal(t, "/signin", paths.Login)
		assert.Equal(t, "/home", paths.Landing)
		assert.Equal(t, "/profile/complete", paths.CompleteProfile)
		assert.Equal(t, "/unauthorized", paths.Unauthorized)
	})
}

func TestExemptRoutes(t *testing.T) {
	t.Run("profile screens exempt by default", func(t *testing.T) {
		routes := exemptRoutes(models.GuardConfig{})

		assert.Contains(t, routes, "/api/v1/users/me")
		assert.Contains(t, routes, "/api/v1/users/me/complete-profile")
	})

	t.Run("configured list replaces defaults", func(t *testing.T) {
		routes := exemptRoutes(models.GuardConfig{
			ExemptRoutes: []string{"/api/v1/onboarding"},
		})

		assert.Equal(t, []string{"/api/v1/onboarding"}, routes)
	})
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	snapshot access.SessionSnapshot
	user     *models.User
	err      error
}

func (s *stubLoader) Load(ctx context.Context, clerkUserID string) (access.SessionSnapshot, *models.User, error) {
	return s.snapshot, s.user, s.err
}

func guardApp(loader SnapshotLoader, requirement access.Requirement, authCtx *auth.AuthContext) *fiber.App {
	guard := NewGuard(loader, access.NewMemoizedEvaluator(access.NewEvaluator(access.DefaultPaths())), nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if authCtx != nil {
			c.Locals("auth_context", authCtx)
		}
		return c.Next()
	})
	app.Get("/protected", guard.Require(requirement), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func clerkCtx(userID string) *auth.AuthContext {
	return &auth.AuthContext{
		Type:  auth.AuthTypeClerk,
		Clerk: &auth.ClerkAuthContext{UserID: userID},
	}
}

func TestGuardAllowsValidatedUser(t *testing.T) {
	loader := &stubLoader{
		snapshot: access.SessionSnapshot{
			Authenticated:    true,
			UserID:           "user_1",
			UserType:         access.UserTypeSeller,
			AccountStatus:    access.AccountStatusActive,
			ValidationStatus: access.ValidationStatusValidated,
			AccessLevel:      access.AccessLevelFull,
			Permissions:      []string{"parcels:create"},
		},
		user: &models.User{ID: 1, ClerkID: "user_1"},
	}

	app := guardApp(loader, access.Requirement{Permissions: []string{"parcels:create"}}, clerkCtx("user_1"))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGuardDeniesWithDecisionPayload(t *testing.T) {
	loader := &stubLoader{
		snapshot: access.SessionSnapshot{
			Authenticated:    true,
			UserID:           "user_1",
			UserType:         access.UserTypeSeller,
			AccountStatus:    access.AccountStatusSuspended,
			ValidationStatus: access.ValidationStatusValidated,
			AccessLevel:      access.AccessLevelFull,
		},
		user: &models.User{ID: 1, ClerkID: "user_1"},
	}

	app := guardApp(loader, access.Requirement{}, clerkCtx("user_1"))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		Error    string          `json:"error"`
		Decision access.Decision `json:"decision"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Decision.Allowed)
	assert.Equal(t, "/auth/login", body.Decision.Redirect)
	assert.Equal(t, access.SeverityError, body.Decision.Severity)
	assert.True(t, body.Decision.Notify)
}

func TestGuardUnauthenticatedGets401(t *testing.T) {
	app := guardApp(&stubLoader{}, access.Requirement{}, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGuardSnapshotErrorIs503(t *testing.T) {
	loader := &stubLoader{err: errors.New("database unreachable")}

	app := guardApp(loader, access.Requirement{}, clerkCtx("user_1"))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["retryable"])
}

func TestGuardMissingUserRecordIsUnauthenticated(t *testing.T) {
	loader := &stubLoader{err: auth.ErrUserNotFound}

	app := guardApp(loader, access.Requirement{}, clerkCtx("user_ghost"))

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGuardExemptRouteSkipsProfileRedirect(t *testing.T) {
	loader := &stubLoader{
		snapshot: access.SessionSnapshot{
			Authenticated: true,
			UserID:        "user_1",
			UserType:      access.UserTypeSeller,
			AccountStatus: access.AccountStatusInactive,
			AccessLevel:   access.AccessLevelProfileOnly,
		},
		user: &models.User{ID: 1, ClerkID: "user_1"},
	}
	guard := NewGuard(loader, access.NewMemoizedEvaluator(access.NewEvaluator(access.DefaultPaths())), []string{"/profile/complete"})

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("auth_context", clerkCtx("user_1"))
		return c.Next()
	})
	app.Post("/profile/complete", guard.Require(access.Requirement{}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/parcels", guard.Require(access.Requirement{}), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/profile/complete", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/parcels", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		Decision access.Decision `json:"decision"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "/profile/complete", body.Decision.Redirect)
}

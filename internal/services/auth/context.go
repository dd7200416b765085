package auth

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/gofiber/fiber/v2"
)

type AuthType string

const (
	AuthTypeClerk  AuthType = "clerk"
	AuthTypeAPIKey AuthType = "api_key"
)

// AuthContext is the authenticated identity attached to a request. Exactly
// one of Clerk or APIKey is set.
type AuthContext struct {
	Type   AuthType
	Clerk  *ClerkAuthContext
	APIKey *APIKeyAuthContext
}

type ClerkAuthContext struct {
	UserID string
	Claims *clerk.SessionClaims
}

type APIKeyAuthContext struct {
	Key      *models.APIKey
	SellerID uint
	Scopes   []string
}

func (a *AuthContext) ClerkUserID() (string, bool) {
	if a.Type == AuthTypeClerk && a.Clerk != nil {
		return a.Clerk.UserID, a.Clerk.UserID != ""
	}
	return "", false
}

func (a *AuthContext) IsClerk() bool {
	return a.Type == AuthTypeClerk
}

func (a *AuthContext) IsAPIKey() bool {
	return a.Type == AuthTypeAPIKey
}

func GetAuthContext(c *fiber.Ctx) *AuthContext {
	authCtx, ok := c.Locals("auth_context").(*AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

func GetClerkUserID(c *fiber.Ctx) (string, bool) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		return "", false
	}
	return authCtx.ClerkUserID()
}

// GetSnapshot returns the session snapshot the guard stored after loading
// the user record.
func GetSnapshot(c *fiber.Ctx) (access.SessionSnapshot, bool) {
	snap, ok := c.Locals("session_snapshot").(access.SessionSnapshot)
	return snap, ok
}

// GetCurrentUser returns the local user record resolved for this request.
func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("current_user").(*models.User)
	return user, ok && user != nil
}

// CurrentUserID returns the local (numeric) user ID for this request,
// falling back to the API key's seller for integration calls.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	if user, ok := GetCurrentUser(c); ok {
		return user.ID, true
	}
	authCtx := GetAuthContext(c)
	if authCtx != nil && authCtx.IsAPIKey() && authCtx.APIKey != nil {
		return authCtx.APIKey.SellerID, true
	}
	return 0, false
}

func GetAPIKey(c *fiber.Ctx) (*models.APIKey, bool) {
	authCtx := GetAuthContext(c)
	if authCtx == nil || authCtx.APIKey == nil {
		return nil, false
	}
	return authCtx.APIKey.Key, authCtx.APIKey.Key != nil
}

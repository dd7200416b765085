package middleware

import (
	"fmt"
	"strings"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/apikey"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/gofiber/fiber/v2"
)

type AuthMiddleware struct {
	verifier      auth.TokenVerifier
	apiKeyService *apikey.Service
	rateLimiter   *apikey.RateLimiter
	config        *AuthMiddlewareConfig
}

type AuthMiddlewareConfig struct {
	Enabled       bool
	HeaderNames   []string
	SkipPaths     []string
	EnableAPIKeys bool
	APIKeyHeader  string
}

func DefaultAuthMiddlewareConfig() *AuthMiddlewareConfig {
	return &AuthMiddlewareConfig{
		Enabled:     true,
		HeaderNames: []string{"Authorization"},
		SkipPaths: []string{
			"/health",
			"/webhooks",
			"/api/v1/tracking",
		},
		EnableAPIKeys: true,
		APIKeyHeader:  "X-API-Key",
	}
}

func NewAuthMiddleware(verifier auth.TokenVerifier, apiKeyService *apikey.Service, config *AuthMiddlewareConfig) *AuthMiddleware {
	if config == nil {
		config = DefaultAuthMiddlewareConfig()
	}
	if len(config.HeaderNames) == 0 {
		config.HeaderNames = []string{"Authorization"}
	}
	return &AuthMiddleware{
		verifier:      verifier,
		apiKeyService: apiKeyService,
		rateLimiter:   apikey.NewRateLimiter(),
		config:        config,
	}
}

// Authenticate resolves the request credential into an AuthContext. Routes
// outside the skip list always need one; the guard decides what it may do.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.config.Enabled {
			return c.Next()
		}

		if m.shouldSkipPath(c.Path()) {
			return c.Next()
		}

		token := m.extractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		authCtx, err := m.validateToken(c, token)
		if err != nil || authCtx == nil {
			errMsg := "Invalid or expired token"
			if err != nil {
				errMsg = err.Error()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": errMsg,
			})
		}

		c.Locals("auth_context", authCtx)
		c.Locals("auth_type", string(authCtx.Type))

		return c.Next()
	}
}

func (m *AuthMiddleware) RequireAPIKeyAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx := auth.GetAuthContext(c)
		if authCtx == nil || !authCtx.IsAPIKey() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This operation requires API key authentication",
			})
		}
		return c.Next()
	}
}

// RequireScope gates integration endpoints on API key scopes. "*" grants
// everything.
func (m *AuthMiddleware) RequireScope(requiredScopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx := auth.GetAuthContext(c)
		if authCtx == nil || !authCtx.IsAPIKey() || authCtx.APIKey == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}

		scopeMap := make(map[string]bool, len(authCtx.APIKey.Scopes))
		for _, scope := range authCtx.APIKey.Scopes {
			scopeMap[scope] = true
		}

		for _, required := range requiredScopes {
			if !scopeMap[required] && !scopeMap["*"] {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Insufficient permissions",
				})
			}
		}

		return c.Next()
	}
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if m.config.EnableAPIKeys && m.config.APIKeyHeader != "" {
		if key := c.Get(m.config.APIKeyHeader); key != "" {
			c.Locals("api_key_raw", strings.TrimSpace(key))
			return strings.TrimSpace(key)
		}
	}

	for _, headerName := range m.config.HeaderNames {
		if header := c.Get(headerName); header != "" {
			if after, ok := strings.CutPrefix(header, "Bearer "); ok {
				return after
			}
			return strings.TrimSpace(header)
		}
	}

	return ""
}

func (m *AuthMiddleware) validateToken(c *fiber.Ctx, token string) (*auth.AuthContext, error) {
	if m.verifier != nil {
		if authCtx, err := m.tryClerkToken(c, token); err == nil && authCtx != nil {
			return authCtx, nil
		}
	}

	if m.config.EnableAPIKeys && m.apiKeyService != nil {
		authCtx, err := m.tryAPIKey(c, token)
		if err != nil {
			return nil, fmt.Errorf("API key validation failed: %w", err)
		}
		if authCtx != nil {
			return authCtx, nil
		}
	}

	return nil, fmt.Errorf("invalid token")
}

func (m *AuthMiddleware) tryClerkToken(c *fiber.Ctx, token string) (*auth.AuthContext, error) {
	claims, err := m.verifier.ValidateToken(c.Context(), token)
	if err != nil {
		return nil, err
	}

	return &auth.AuthContext{
		Type: auth.AuthTypeClerk,
		Clerk: &auth.ClerkAuthContext{
			UserID: claims.Subject,
			Claims: claims,
		},
	}, nil
}

func (m *AuthMiddleware) tryAPIKey(c *fiber.Ctx, token string) (*auth.AuthContext, error) {
	key, err := m.apiKeyService.ValidateAPIKey(c.Context(), token)
	if err != nil {
		return nil, err
	}

	if key.RateLimitRpm != nil && *key.RateLimitRpm > 0 {
		allowed, err := m.rateLimiter.CheckRateLimit(c.Context(), key.ID, *key.RateLimitRpm)
		if err != nil {
			return nil, fmt.Errorf("failed to check rate limit: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("rate limit exceeded")
		}
	}

	scopes := []string{}
	if key.Scopes != "" {
		scopes = strings.Split(key.Scopes, ",")
	}

	return &auth.AuthContext{
		Type: auth.AuthTypeAPIKey,
		APIKey: &auth.APIKeyAuthContext{
			Key:      key,
			SellerID: key.SellerID,
			Scopes:   scopes,
		},
	}, nil
}

func (m *AuthMiddleware) shouldSkipPath(path string) bool {
	for _, skipPath := range m.config.SkipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

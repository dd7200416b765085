package middleware

import (
	"context"
	"errors"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// SnapshotLoader resolves session snapshots; satisfied by
// auth.SnapshotService.
type SnapshotLoader interface {
	Load(ctx context.Context, clerkUserID string) (access.SessionSnapshot, *models.User, error)
}

// Guard enforces access policy on back-office routes. It resolves the
// session snapshot for the authenticated user, runs the policy evaluator and
// turns denials into structured responses the SPA can act on (toast via
// notify/severity, navigation via redirect). The evaluator stays pure; all
// enforcement lives here.
type Guard struct {
	snapshots SnapshotLoader
	evaluator *access.MemoizedEvaluator

	// exemptRoutes are matched on route identity. Requests to these paths
	// pass the profile-completion check so an incomplete profile can still
	// reach the screens needed to complete it.
	exemptRoutes map[string]bool
}

func NewGuard(snapshots SnapshotLoader, evaluator *access.MemoizedEvaluator, exemptRoutes []string) *Guard {
	exempt := make(map[string]bool, len(exemptRoutes))
	for _, route := range exemptRoutes {
		exempt[route] = true
	}
	return &Guard{
		snapshots:    snapshots,
		evaluator:    evaluator,
		exemptRoutes: exempt,
	}
}

// Require evaluates the route's requirement against the current session.
// Denials carry the full decision so the client renders reason and redirect;
// a snapshot load failure is a distinct 503, not a denial: denied means we
// know the user's status, an error means we could not determine it.
func (g *Guard) Require(requirement access.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot, ok := g.resolveSnapshot(c)
		if !ok {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":     "Unable to verify your session. Please retry.",
				"retryable": true,
			})
		}

		decision := g.evaluator.Evaluate(snapshot, requirement, g.isExemptRoute(c))
		if !decision.Allowed {
			return writeDenial(c, decision)
		}

		return c.Next()
	}
}

// resolveSnapshot builds the evaluator input for this request. The second
// return is false only when the identity source could not be consulted.
func (g *Guard) resolveSnapshot(c *fiber.Ctx) (access.SessionSnapshot, bool) {
	// Reuse the snapshot when a guard earlier in the chain already loaded it.
	if snap, ok := auth.GetSnapshot(c); ok {
		return snap, true
	}

	authCtx := auth.GetAuthContext(c)
	if authCtx == nil {
		return access.SessionSnapshot{}, true
	}

	if authCtx.IsAPIKey() {
		// Integration keys never reach back-office screens; they carry no
		// account lifecycle, so the evaluator sees them as unauthenticated.
		return access.SessionSnapshot{}, true
	}

	clerkUserID, ok := authCtx.ClerkUserID()
	if !ok {
		return access.SessionSnapshot{}, true
	}

	snapshot, user, err := g.snapshots.Load(c.Context(), clerkUserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Valid token but no local record yet (webhook sync lag):
			// treated as not authenticated, not as an error.
			return access.SessionSnapshot{}, true
		}
		fiberlog.Errorf("Failed to load session snapshot for %s: %v", clerkUserID, err)
		return access.SessionSnapshot{}, false
	}

	c.Locals("session_snapshot", snapshot)
	c.Locals("current_user", user)
	return snapshot, true
}

func (g *Guard) isExemptRoute(c *fiber.Ctx) bool {
	if g.exemptRoutes[c.Path()] {
		return true
	}
	if route := c.Route(); route != nil && g.exemptRoutes[route.Path] {
		return true
	}
	return false
}

func writeDenial(c *fiber.Ctx, decision access.Decision) error {
	status := fiber.StatusForbidden
	if decision.Redirect != "" && !decision.Notify && decision.Severity == "" {
		// The silent authentication-required denial.
		status = fiber.StatusUnauthorized
	}

	return c.Status(status).JSON(fiber.Map{
		"error":    decision.Reason,
		"decision": decision,
	})
}

package auth

import (
	"context"

	"github.com/clerk/clerk-sdk-go/v2"
)

// TokenVerifier validates a bearer token against the external identity
// source and returns its session claims.
type TokenVerifier interface {
	ValidateToken(ctx context.Context, token string) (*clerk.SessionClaims, error)
}

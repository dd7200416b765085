package tracking

import (
	"testing"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(ttlHours int) *Service {
	return NewService(nil, &models.TrackingConfig{
		SigningSecret: "test-secret-key",
		TokenTTLHours: ttlHours,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestService(1)

	token, err := svc.IssueToken("DLV-AB12CD34EF")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	code, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "DLV-AB12CD34EF", code)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(1)

	_, err := svc.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	issuer := newTestService(1)
	verifier := NewService(nil, &models.TrackingConfig{SigningSecret: "other-secret"})

	token, err := issuer.IssueToken("DLV-X")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc := newTestService(1)
	svc.ttl = -time.Minute

	token, err := svc.IssueToken("DLV-X")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDefaultTTL(t *testing.T) {
	svc := newTestService(0)
	assert.Equal(t, defaultTokenTTL, svc.ttl)
}

package builder

import (
	"testing"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	cfg := New().Build()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.AllowedOrigins)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.True(t, cfg.Auth.APIKeys.Enabled)
	assert.Equal(t, "X-API-Key", cfg.Auth.APIKeys.HeaderName)
}

func TestBuilderWiring(t *testing.T) {
	b := New().
		Port("9090").
		Environment("production").
		WithClerkAuth("sk_live_x", "whsec_x").
		WithStripe("sk_stripe", "whsec_stripe").
		WithRedis("redis://localhost:6379").
		WithTracking("secret", 48).
		WithSmsGateway(models.SmsGatewayConfig{BaseURL: "https://sms.example.com", APIKey: "k"}).
		WithEventStore(models.EventStoreConfig{Host: "localhost", Port: 9000, Database: "events"}).
		WithDatabase(models.DatabaseConfig{Type: models.SQLite, Database: "delivery"})

	cfg := b.Build()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sk_live_x", cfg.Auth.Clerk.SecretKey)
	assert.Equal(t, "sk_stripe", cfg.Billing.SecretKey)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 48, cfg.Tracking.TokenTTLHours)
	assert.True(t, cfg.Sms.Enabled, "WithSmsGateway enables the gateway")
	require.NotNil(t, cfg.EventStore)
	assert.True(t, cfg.EventStore.Enabled, "WithEventStore enables the store")
	require.NotNil(t, cfg.Database)
	assert.Equal(t, models.SQLite, cfg.Database.Type)
}

func TestBuilderRateLimitAndTimeout(t *testing.T) {
	b := New().
		WithRateLimit(100, time.Minute).
		WithTimeout(10 * time.Second)

	require.NotNil(t, b.GetRateLimitConfig())
	assert.Equal(t, 100, b.GetRateLimitConfig().Max)
	assert.Equal(t, time.Minute, b.GetRateLimitConfig().Expiration)
	require.NotNil(t, b.GetTimeoutConfig())
	assert.Equal(t, 10*time.Second, b.GetTimeoutConfig().Timeout)
}

package builder

import "github.com/Ouakat/SaaS-Delivery-sub001/internal/models"

func (b *Builder) WithDatabase(cfg models.DatabaseConfig) *Builder {
	b.cfg.Database = &cfg
	return b
}

// WithEventStore enables the analytical event store that backs parcel
// history.
func (b *Builder) WithEventStore(cfg models.EventStoreConfig) *Builder {
	cfg.Enabled = true
	b.cfg.EventStore = &cfg
	return b
}

func (b *Builder) WithRedis(url string) *Builder {
	b.cfg.Redis = models.RedisConfig{URL: url}
	return b
}

func (b *Builder) WithClerkAuth(secretKey, webhookSecret string) *Builder {
	b.cfg.Auth.Clerk = models.ClerkAuthConfig{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
	}
	return b
}

func (b *Builder) WithAPIKeys(cfg models.APIKeyConfig) *Builder {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-API-Key"
	}
	b.cfg.Auth.APIKeys = cfg
	return b
}

// WithGuard overrides the route guard's redirect paths and exempt routes.
func (b *Builder) WithGuard(cfg models.GuardConfig) *Builder {
	b.cfg.Auth.Guard = cfg
	return b
}

func (b *Builder) WithSmsGateway(cfg models.SmsGatewayConfig) *Builder {
	cfg.Enabled = true
	b.cfg.Sms = cfg
	return b
}

func (b *Builder) WithStripe(secretKey, webhookSecret string) *Builder {
	b.cfg.Billing = models.StripeConfig{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
	}
	return b
}

func (b *Builder) WithTracking(signingSecret string, tokenTTLHours int) *Builder {
	b.cfg.Tracking = models.TrackingConfig{
		SigningSecret: signingSecret,
		TokenTTLHours: tokenTTLHours,
	}
	return b
}

package pkg

import "github.com/Ouakat/SaaS-Delivery-sub001/internal/models"

type (
	ServerConfig     = models.ServerConfig
	DatabaseConfig   = models.DatabaseConfig
	EventStoreConfig = models.EventStoreConfig
	AuthConfig       = models.AuthConfig
	ClerkAuthConfig  = models.ClerkAuthConfig
	GuardConfig      = models.GuardConfig
	APIKeyConfig     = models.APIKeyConfig
	RedisConfig      = models.RedisConfig
	TrackingConfig   = models.TrackingConfig
	SmsGatewayConfig = models.SmsGatewayConfig
	StripeConfig     = models.StripeConfig
	RateLimitConfig  = models.RateLimitConfig
	TimeoutConfig    = models.TimeoutConfig
)

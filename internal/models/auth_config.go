package models

// AuthConfig wires the identity source and the route guard.
type AuthConfig struct {
	Clerk   ClerkAuthConfig `json:"clerk" yaml:"clerk"`
	APIKeys APIKeyConfig    `json:"api_keys" yaml:"api_keys"`
	Guard   GuardConfig     `json:"guard" yaml:"guard"`
}

type ClerkAuthConfig struct {
	SecretKey     string `json:"-" yaml:"secret_key"`
	WebhookSecret string `json:"-" yaml:"webhook_secret"`
}

// GuardConfig carries the redirect paths denials point at and the routes
// exempt from the profile-completion redirect. Exemption is an explicit
// route list matched on route identity, never on path substrings.
type GuardConfig struct {
	LoginPath           string   `json:"login_path,omitempty" yaml:"login_path,omitempty"`
	CompleteProfilePath string   `json:"complete_profile_path,omitempty" yaml:"complete_profile_path,omitempty"`
	LandingPath         string   `json:"landing_path,omitempty" yaml:"landing_path,omitempty"`
	UnauthorizedPath    string   `json:"unauthorized_path,omitempty" yaml:"unauthorized_path,omitempty"`
	ExemptRoutes        []string `json:"exempt_routes,omitempty" yaml:"exempt_routes,omitempty"`
	SnapshotTTLSec      int      `json:"snapshot_ttl_sec,omitempty" yaml:"snapshot_ttl_sec,omitempty"`
}

// RedisConfig configures the session snapshot cache.
type RedisConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// TrackingConfig configures signed public tracking links.
type TrackingConfig struct {
	SigningSecret string `json:"-" yaml:"signing_secret"`
	TokenTTLHours int    `json:"token_ttl_hours,omitempty" yaml:"token_ttl_hours,omitempty"`
}

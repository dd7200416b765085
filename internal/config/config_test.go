package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"set variable", "host: ${TEST_DB_HOST}", "host: db.internal"},
		{"unset with default", "port: ${TEST_UNSET_PORT:-5432}", "port: 5432"},
		{"unset without default", "key: ${TEST_UNSET_KEY}", "key: "},
		{"set wins over default", "host: ${TEST_DB_HOST:-localhost}", "host: db.internal"},
		{"no placeholder", "plain: value", "plain: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.content))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_CLERK_KEY", "sk_test_abc")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9090"
  allowed_origins: "*"
auth:
  clerk:
    secret_key: ${TEST_CLERK_KEY}
  guard:
    login_path: /auth/login
    exempt_routes:
      - "POST /api/v1/users/me/complete-profile"
database:
  type: postgresql
  database: delivery
tracking:
  signing_secret: s3cret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sk_test_abc", cfg.Auth.Clerk.SecretKey)
	assert.Equal(t, "/auth/login", cfg.Auth.Guard.LoginPath)
	assert.Len(t, cfg.Auth.Guard.ExemptRoutes, 1)
	assert.Equal(t, "X-API-Key", cfg.Auth.APIKeys.HeaderName)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFileRejectsTraversal(t *testing.T) {
	_, err := LoadFromFile("../../etc/passwd.yaml")
	assert.Error(t, err)
}

func TestLoadFromFileRejectsNonYaml(t *testing.T) {
	_, err := LoadFromFile("config.json")
	assert.Error(t, err)
}

func TestValidateReportsMissing(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.MissingFields, "server.port")
	assert.Contains(t, verr.MissingFields, "auth.clerk.secret_key")
	assert.Contains(t, verr.MissingFields, "tracking.signing_secret")
}

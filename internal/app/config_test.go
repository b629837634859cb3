package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 5*time.Minute, cfg.AuthCacheTTL)
	require.Equal(t, 120, cfg.RateLimitPerMinute)
	require.True(t, cfg.AuditEnabled)
	require.False(t, cfg.AuthzExposeDetails)
	require.False(t, cfg.DBAutoMigrate)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTHZ_EXPOSE_DETAILS", "true")
	t.Setenv("AUTH_CACHE_TTL", "30s")
	t.Setenv("AUDIT_RETENTION_DAYS", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.True(t, cfg.AuthzExposeDetails)
	require.Equal(t, 30*time.Second, cfg.AuthCacheTTL)
	require.Equal(t, 30, cfg.AuditRetentionDays)
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":  {"JWT_SECRET": ""},
		"short secret":    {"JWT_SECRET": "short"},
		"zero rate limit": {"JWT_SECRET": testSecret, "RATE_LIMIT_PER_MINUTE": "0"},
		"zero retention":  {"JWT_SECRET": testSecret, "AUDIT_RETENTION_DAYS": "0"},
		"bad duration":    {"JWT_SECRET": testSecret, "AUTH_CACHE_TTL": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestNilConfigIsNotProduction(t *testing.T) {
	var cfg *Config
	require.False(t, cfg.IsProduction())
}

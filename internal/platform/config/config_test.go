package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/hrms",
		MaxBodyBytes:       4096,
		RateLimitPerMinute: 60,
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://db/hrms")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("PAYROLL_RUN_INTERVAL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://db/hrms", cfg.DatabaseURL)
	assert.False(t, cfg.RunSeed)
	assert.Equal(t, 24*time.Hour, cfg.PayrollRunInterval)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := Load()
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.True(t, cfg.MetricsEnabled)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	missingDB := validConfig()
	missingDB.DatabaseURL = ""
	assert.Error(t, missingDB.Validate())

	prod := validConfig()
	prod.Environment = "production"
	assert.Error(t, prod.Validate(), "production requires a jwt secret")

	prod.JWTSecret = "secret"
	prod.DataEncryptionKey = "key"
	prod.SeedAdminPassword = "pw"
	prod.RunSeed = true
	assert.NoError(t, prod.Validate())

	negative := validConfig()
	negative.PayrollRunInterval = -time.Minute
	assert.Error(t, negative.Validate())
}

func TestTrustedProxyPrefixes(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/hrms")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7,fd00::/8")

	cfg := Load()
	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.7/32"),
		netip.MustParsePrefix("fd00::/8"),
	}, prefixes)

	none, err := validConfig().TrustedProxyPrefixes()
	require.NoError(t, err)
	assert.Empty(t, none)

	bad := validConfig()
	bad.TrustedProxies = []string{"10.0.0.0/33"}
	assert.Error(t, bad.Validate())
	bad.TrustedProxies = []string{"proxy.internal"}
	assert.Error(t, bad.Validate())
}

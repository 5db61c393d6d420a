package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment_Defaults(t *testing.T) {
	cfg, err := ParseEnvironment(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 720*time.Hour, cfg.Auth.TokenMaxAge)
	assert.Equal(t, 24*time.Hour, cfg.Accounts.IdleAfter)
	assert.Equal(t, "*/5 * * * *", cfg.Accounts.SweepSchedule)
	assert.Equal(t, "MetaTrader", cfg.Accounts.DefaultTerminal)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.IsProduction())
}

func TestParseEnvironment_Overrides(t *testing.T) {
	cfg, err := ParseEnvironment(map[string]string{
		"PORT":                 "9000",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"TOKEN_MAX_AGE":        "0",
		"ACCOUNT_IDLE_AFTER":   "90m",
		"DEFAULT_TERMINAL":     "MT5",
		"REDIS_URL":            "redis://localhost:6379/0",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, time.Duration(0), cfg.Auth.TokenMaxAge)
	assert.Equal(t, 90*time.Minute, cfg.Accounts.IdleAfter)
	assert.Equal(t, "MT5", cfg.Accounts.DefaultTerminal)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestParseEnvironment_BadDuration(t *testing.T) {
	_, err := ParseEnvironment(map[string]string{"TOKEN_MAX_AGE": "forever"})
	assert.Error(t, err)
}

func TestParseEnvironment_ProductionNeedsSecrets(t *testing.T) {
	_, err := ParseEnvironment(map[string]string{"GO_ENV": "production"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg, err := ParseEnvironment(map[string]string{
		"GO_ENV":         "production",
		"SESSION_SECRET": "s3ssion",
		"JWT_SECRET":     "jwt",
		"DATABASE_URL":   "postgres://localhost/tradelink",
	})
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

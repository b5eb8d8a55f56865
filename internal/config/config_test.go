package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:8001", cfg.Backend.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Backend.AnalysisTimeout.Duration)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "polymarket", cfg.Dashboard.DefaultExchange)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Dashboard.ListLimit)
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketdeck.toml")
	data := `
log_level = "debug"

[backend]
base_url = "http://backend:9001"
analysis_timeout = "90s"

[server]
port = 8080

[dashboard]
default_exchange = "kalshi"
stock_symbols = ["SPY", "IWM"]
quote_refresh = "30s"

[redis]
enabled = true
addr = "redis:6379"
cache_ttl = "1m"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://backend:9001", cfg.Backend.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Backend.AnalysisTimeout.Duration)
	// Untouched fields keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Backend.RequestTimeout.Duration)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "kalshi", cfg.Dashboard.DefaultExchange)
	assert.Equal(t, []string{"SPY", "IWM"}, cfg.Dashboard.StockSymbols)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.QuoteRefresh.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL.Duration)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketdeck.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 8080\n"), 0o644))

	t.Setenv("MARKETDECK_SERVER_PORT", "9090")
	t.Setenv("MARKETDECK_BACKEND_BASE_URL", "http://env-backend:8001")
	t.Setenv("MARKETDECK_DASHBOARD_STOCK_SYMBOLS", "SPY, QQQ ,")
	t.Setenv("MARKETDECK_REDIS_ENABLED", "true")
	t.Setenv("MARKETDECK_BACKEND_ANALYSIS_TIMEOUT", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://env-backend:8001", cfg.Backend.BaseURL)
	assert.Equal(t, []string{"SPY", "QQQ"}, cfg.Dashboard.StockSymbols)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Backend.AnalysisTimeout.Duration)
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[[broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	cfg.Backend.BaseURL = "  "
	cfg.Server.Port = 70000
	cfg.Dashboard.DefaultExchange = "nasdaq"
	cfg.Dashboard.ListLimit = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "default_exchange")
	assert.Contains(t, err.Error(), "list_limit")
}

func TestValidate_RedisCheckedOnlyWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Addr = ""
	cfg.Redis.CacheTTL.Duration = 0
	require.NoError(t, cfg.Validate(), "disabled cache should not be validated")

	cfg.Redis.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: addr")
	assert.Contains(t, err.Error(), "cache_ttl")
}

func TestValidate_TelegramCredentialsSetTogether(t *testing.T) {
	cfg := Defaults()
	cfg.Notify.TelegramToken = "123:abc"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")

	cfg.Notify.TelegramChatID = "-100200300"
	require.NoError(t, cfg.Validate())
}

// Package config defines the gateway configuration and validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MARKETDECK_* environment variables.
type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Server    ServerConfig    `toml:"server"`
	Redis     RedisConfig     `toml:"redis"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Notify    NotifyConfig    `toml:"notify"`
	LogLevel  string          `toml:"log_level"`
}

// NotifyConfig holds alert notification channel credentials. A channel is
// enabled when its credentials are set.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// BackendConfig holds the upstream analytics backend endpoint and timeouts.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	// RequestTimeout bounds market-data and proxy calls.
	RequestTimeout duration `toml:"request_timeout"`
	// AnalysisTimeout bounds AI analysis and chat calls, which run much
	// longer than market-data reads.
	AnalysisTimeout duration `toml:"analysis_timeout"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// RedisConfig holds the optional response-cache connection parameters.
type RedisConfig struct {
	Enabled  bool     `toml:"enabled"`
	Addr     string   `toml:"addr"`
	Password string   `toml:"password"`
	DB       int      `toml:"db"`
	PoolSize int      `toml:"pool_size"`
	CacheTTL duration `toml:"cache_ttl"`
}

// DashboardConfig holds view-state defaults.
type DashboardConfig struct {
	DefaultExchange string   `toml:"default_exchange"`
	ListLimit       int      `toml:"list_limit"`
	StockSymbols    []string `toml:"stock_symbols"`
	// QuoteRefresh is the interval of the background stock/index refresh
	// loop; zero disables it.
	QuoteRefresh duration `toml:"quote_refresh"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "45s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "45s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:         "http://localhost:8001",
			RequestTimeout:  duration{30 * time.Second},
			AnalysisTimeout: duration{45 * time.Second},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
			CacheTTL: duration{30 * time.Second},
		},
		Dashboard: DashboardConfig{
			DefaultExchange: "polymarket",
			ListLimit:       50,
			StockSymbols:    []string{"SPY", "QQQ", "AAPL", "NVDA", "TSLA"},
			QuoteRefresh:    duration{0},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validExchanges enumerates the accepted default exchanges.
var validExchanges = map[string]bool{
	"polymarket": true,
	"kalshi":     true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Backend
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		errs = append(errs, "backend: base_url must not be empty")
	}
	if c.Backend.RequestTimeout.Duration <= 0 {
		errs = append(errs, "backend: request_timeout must be > 0")
	}
	if c.Backend.AnalysisTimeout.Duration <= 0 {
		errs = append(errs, "backend: analysis_timeout must be > 0")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	// Redis (only checked when the cache is enabled)
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.CacheTTL.Duration <= 0 {
			errs = append(errs, "redis: cache_ttl must be > 0 when enabled")
		}
	}

	// Dashboard
	if !validExchanges[strings.ToLower(c.Dashboard.DefaultExchange)] {
		errs = append(errs, fmt.Sprintf("dashboard: unknown default_exchange %q (valid: polymarket, kalshi)", c.Dashboard.DefaultExchange))
	}
	if c.Dashboard.ListLimit < 1 || c.Dashboard.ListLimit > 500 {
		errs = append(errs, fmt.Sprintf("dashboard: list_limit must be 1-500, got %d", c.Dashboard.ListLimit))
	}

	// Notify — telegram credentials must be set together, or not at all.
	if (c.Notify.TelegramToken != "") != (c.Notify.TelegramChatID != "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

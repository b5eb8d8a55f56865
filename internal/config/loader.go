package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETDECK_* environment variable overrides, and
// returns the final Config. A missing file is not an error: defaults plus env
// overrides are used so the gateway can run with zero on-disk config. The
// returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETDECK_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This lets
// operators point the gateway at a different backend at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Backend ──
	setStr(&cfg.Backend.BaseURL, "MARKETDECK_BACKEND_BASE_URL")
	setDuration(&cfg.Backend.RequestTimeout, "MARKETDECK_BACKEND_REQUEST_TIMEOUT")
	setDuration(&cfg.Backend.AnalysisTimeout, "MARKETDECK_BACKEND_ANALYSIS_TIMEOUT")

	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETDECK_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETDECK_SERVER_CORS_ORIGINS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MARKETDECK_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MARKETDECK_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETDECK_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETDECK_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETDECK_REDIS_POOL_SIZE")
	setDuration(&cfg.Redis.CacheTTL, "MARKETDECK_REDIS_CACHE_TTL")

	// ── Dashboard ──
	setStr(&cfg.Dashboard.DefaultExchange, "MARKETDECK_DASHBOARD_DEFAULT_EXCHANGE")
	setInt(&cfg.Dashboard.ListLimit, "MARKETDECK_DASHBOARD_LIST_LIMIT")
	setStringSlice(&cfg.Dashboard.StockSymbols, "MARKETDECK_DASHBOARD_STOCK_SYMBOLS")
	setDuration(&cfg.Dashboard.QuoteRefresh, "MARKETDECK_DASHBOARD_QUOTE_REFRESH")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MARKETDECK_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MARKETDECK_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MARKETDECK_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MARKETDECK_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

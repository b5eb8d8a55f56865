package app

import (
	"context"
	"fmt"
	"log/slog"

	"marketdeck/internal/backend"
	rediscache "marketdeck/internal/cache/redis"
	"marketdeck/internal/config"
	"marketdeck/internal/domain"
	"marketdeck/internal/notify"
	"marketdeck/internal/service"
	"marketdeck/internal/viewstate"
)

// Dependencies bundles everything Serve needs. It is constructed by Wire and
// torn down by the returned cleanup function.
type Dependencies struct {
	Backend    *backend.Client
	Cache      *rediscache.ResponseCache // nil when the cache is disabled
	MarketData *service.MarketDataService
	Controller *viewstate.Controller
	Alerts     *notify.AlertDispatcher // nil when no channel is configured
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Backend client ---
	deps.Backend = backend.New(backend.Config{
		BaseURL:         cfg.Backend.BaseURL,
		RequestTimeout:  cfg.Backend.RequestTimeout.Duration,
		AnalysisTimeout: cfg.Backend.AnalysisTimeout.Duration,
	})

	// --- Redis response cache (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := rediscache.New(ctx, rediscache.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Cache = rediscache.NewResponseCache(redisClient, cfg.Redis.CacheTTL.Duration)
	}

	// --- Read-through market data service ---
	var cache service.ResponseCache
	if deps.Cache != nil {
		cache = deps.Cache
	}
	deps.MarketData = service.NewMarketDataService(deps.Backend, cache, logger)

	// --- View-state controller ---
	deps.Controller = viewstate.NewController(deps.Backend, viewstate.Config{
		DefaultExchange: domain.Exchange(cfg.Dashboard.DefaultExchange),
		ListLimit:       cfg.Dashboard.ListLimit,
		StockSymbols:    cfg.Dashboard.StockSymbols,
	}, logger)

	// --- Alert notifications (optional) ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Alerts = notify.NewAlertDispatcher(notify.NewNotifier(senders, logger))
	}

	return deps, cleanup, nil
}

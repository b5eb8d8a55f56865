package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketdeck/internal/domain"
	"marketdeck/internal/server"
	"marketdeck/internal/server/handler"
	"marketdeck/internal/server/ws"
	"marketdeck/internal/viewstate"
)

// shutdownGrace bounds how long in-flight requests may run after the context
// is cancelled.
const shutdownGrace = 10 * time.Second

// Serve starts the HTTP server, the WebSocket hub, and the background quote
// refresh loop, and blocks until the context is cancelled.
func (a *App) Serve(ctx context.Context, deps *Dependencies) error {
	g, ctx := errgroup.WithContext(ctx)

	// Warm the dashboard before accepting traffic. Failures are non-fatal:
	// the panels carry their own error state and the browser can retry.
	if err := deps.Controller.LoadMarkets(ctx); err != nil {
		a.logger.WarnContext(ctx, "initial market load failed",
			slog.String("error", err.Error()),
		)
	}
	if err := deps.Controller.RefreshQuotes(ctx); err != nil {
		a.logger.WarnContext(ctx, "initial quote refresh failed",
			slog.String("error", err.Error()),
		)
	}

	hub := ws.NewHub(deps.Controller, a.logger)
	g.Go(func() error {
		err := hub.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	handlers := server.Handlers{
		Health:    handler.NewHealthHandler(a.version),
		Dashboard: handler.NewDashboardHandler(deps.Controller, a.logger),
		Markets: handler.NewMarketHandler(
			deps.MarketData,
			domain.Exchange(a.cfg.Dashboard.DefaultExchange),
			a.cfg.Dashboard.ListLimit,
			a.logger,
		),
		Stocks:   handler.NewStockHandler(deps.Backend, a.cfg.Dashboard.StockSymbols, a.logger),
		Analysis: handler.NewAnalysisHandler(deps.Controller, a.logger),
		Proxy: handler.NewProxyHandler(
			a.cfg.Backend.BaseURL,
			a.cfg.Backend.RequestTimeout.Duration,
			a.logger,
		),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Periodic stock/index refresh keeps the quotes panels warm for WS
	// subscribers; disabled when the interval is zero.
	if interval := a.cfg.Dashboard.QuoteRefresh.Duration; interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := deps.Controller.RefreshQuotes(ctx); err != nil {
						a.logger.WarnContext(ctx, "quote refresh failed",
							slog.String("error", err.Error()),
						)
					}
				}
			}
		})
	}

	// Forward freshly triggered alerts from the alerts analysis panel to the
	// configured notification channels.
	if deps.Alerts != nil {
		g.Go(func() error {
			events, cancel := deps.Controller.Subscribe()
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					if ev.Type != viewstate.EventFetchSucceeded ||
						ev.Panel != viewstate.PanelAnalysis ||
						ev.Kind != domain.AnalysisAlerts {
						continue
					}
					snap := deps.Controller.Snapshot()
					panel, ok := snap.Analyses[domain.AnalysisAlerts]
					if !ok || panel.Value.Alerts == nil {
						continue
					}
					if _, err := deps.Alerts.Dispatch(ctx, panel.Value.Alerts.Alerts); err != nil {
						a.logger.WarnContext(ctx, "alert dispatch failed",
							slog.String("error", err.Error()),
						)
					}
				}
			}
		})
	}

	return g.Wait()
}

// Package server wires the HTTP mux, middleware chain, and WebSocket
// endpoint for the dashboard gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marketdeck/internal/server/handler"
	"marketdeck/internal/server/middleware"
	"marketdeck/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health    *handler.HealthHandler
	Dashboard *handler.DashboardHandler
	Markets   *handler.MarketHandler
	Stocks    *handler.StockHandler
	Analysis  *handler.AnalysisHandler
	Proxy     *handler.ProxyHandler
}

// Server is the dashboard gateway's HTTP + WebSocket server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered and the middleware
// chain (CORS, request logging) applied.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// View-state endpoints.
	mux.HandleFunc("GET /api/dashboard", handlers.Dashboard.GetState)
	mux.HandleFunc("POST /api/dashboard/exchange", handlers.Dashboard.SelectExchange)
	mux.HandleFunc("POST /api/dashboard/market", handlers.Dashboard.SelectMarket)
	mux.HandleFunc("POST /api/dashboard/outcome", handlers.Dashboard.SelectOutcome)
	mux.HandleFunc("POST /api/dashboard/search", handlers.Dashboard.Search)

	// Stateless market-data reads.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /api/markets/{id}/candles", handlers.Markets.GetCandles)
	mux.HandleFunc("GET /api/markets/{id}/book", handlers.Markets.GetOrderBook)

	// Stocks and indices.
	mux.HandleFunc("GET /api/stocks", handlers.Stocks.GetStocks)
	mux.HandleFunc("GET /api/indices", handlers.Stocks.GetIndices)

	// AI analysis and chat.
	mux.HandleFunc("POST /api/analysis/{kind}", handlers.Analysis.RunAnalysis)
	mux.HandleFunc("POST /api/chat", handlers.Analysis.Chat)

	// Verbatim proxy to the upstream backend. Registered without a method
	// so every verb forwards; OPTIONS never reaches it (CORS answers those).
	mux.HandleFunc("/api/proxy/{path...}", handlers.Proxy.Forward)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Package service provides the gateway's read-through layer between HTTP
// handlers and the upstream backend, with an optional Redis response cache
// in front of the hot market-data endpoints.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"marketdeck/internal/domain"
)

// Backend is the subset of backend calls the market-data service forwards.
type Backend interface {
	ListMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error)
	SearchMarkets(ctx context.Context, exchange domain.Exchange, query string) ([]domain.Market, error)
	GetMarket(ctx context.Context, exchange domain.Exchange, id string) (domain.Market, error)
	GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error)
	GetOrderBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error)
}

// ResponseCache is the cache contract; implemented by the Redis response
// cache. Get methods return domain.ErrNotFound on a miss.
type ResponseCache interface {
	GetMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error)
	SetMarkets(ctx context.Context, exchange domain.Exchange, limit int, markets []domain.Market) error
	GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error)
	SetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval, candles []domain.Candle) error
	GetBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error)
	SetBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, book domain.OrderBook) error
}

// MarketDataService serves market listings, candles, and order books,
// checking the cache first and falling back to the backend on a miss. A nil
// cache disables caching entirely.
type MarketDataService struct {
	backend Backend
	cache   ResponseCache
	logger  *slog.Logger
}

// NewMarketDataService creates a MarketDataService. cache may be nil.
func NewMarketDataService(backend Backend, cache ResponseCache, logger *slog.Logger) *MarketDataService {
	return &MarketDataService{
		backend: backend,
		cache:   cache,
		logger:  logger.With(slog.String("component", "marketdata")),
	}
}

// ListMarkets returns the default listing, cache-first.
func (s *MarketDataService) ListMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error) {
	if s.cache != nil {
		markets, err := s.cache.GetMarkets(ctx, exchange, limit)
		if err == nil {
			return markets, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "marketdata: cache read failed",
				slog.String("exchange", string(exchange)),
				slog.String("error", err.Error()),
			)
		}
	}

	markets, err := s.backend.ListMarkets(ctx, exchange, limit)
	if err != nil {
		return nil, fmt.Errorf("marketdata: list markets: %w", err)
	}

	// Back-fill cache; log but do not fail on cache write errors.
	if s.cache != nil {
		if cacheErr := s.cache.SetMarkets(ctx, exchange, limit, markets); cacheErr != nil {
			s.logger.WarnContext(ctx, "marketdata: cache write failed",
				slog.String("exchange", string(exchange)),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return markets, nil
}

// SearchMarkets forwards a search to the backend. Search results are not
// cached; queries are too varied to be worth the keys.
func (s *MarketDataService) SearchMarkets(ctx context.Context, exchange domain.Exchange, query string) ([]domain.Market, error) {
	markets, err := s.backend.SearchMarkets(ctx, exchange, query)
	if err != nil {
		return nil, fmt.Errorf("marketdata: search markets: %w", err)
	}
	return markets, nil
}

// GetMarket forwards a single-market read to the backend.
func (s *MarketDataService) GetMarket(ctx context.Context, exchange domain.Exchange, id string) (domain.Market, error) {
	market, err := s.backend.GetMarket(ctx, exchange, id)
	if err != nil {
		return domain.Market{}, fmt.Errorf("marketdata: get market %s: %w", id, err)
	}
	return market, nil
}

// GetCandles returns an outcome's candle series, cache-first.
func (s *MarketDataService) GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error) {
	if interval == "" {
		interval = domain.IntervalDefault
	}

	if s.cache != nil {
		candles, err := s.cache.GetCandles(ctx, exchange, marketID, outcomeID, interval)
		if err == nil {
			return candles, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "marketdata: cache read failed",
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	candles, err := s.backend.GetCandles(ctx, exchange, marketID, outcomeID, interval)
	if err != nil {
		return nil, fmt.Errorf("marketdata: get candles: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetCandles(ctx, exchange, marketID, outcomeID, interval, candles); cacheErr != nil {
			s.logger.WarnContext(ctx, "marketdata: cache write failed",
				slog.String("market_id", marketID),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return candles, nil
}

// GetOrderBook returns an outcome's order book snapshot, cache-first.
func (s *MarketDataService) GetOrderBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error) {
	if s.cache != nil {
		book, err := s.cache.GetBook(ctx, exchange, marketID, outcomeID)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "marketdata: cache read failed",
				slog.String("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	book, err := s.backend.GetOrderBook(ctx, exchange, marketID, outcomeID)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("marketdata: get orderbook: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetBook(ctx, exchange, marketID, outcomeID, book); cacheErr != nil {
			s.logger.WarnContext(ctx, "marketdata: cache write failed",
				slog.String("market_id", marketID),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return book, nil
}

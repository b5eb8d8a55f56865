package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketdeck/internal/domain"
)

// ResponseCache caches backend market-data responses under short TTLs so
// that many browser tabs hitting the same dashboard do not fan out into
// duplicate upstream calls.
//
// Key schema:
//
//	mkts:{exchange}:{limit}                    - JSON []Market (default listing)
//	candles:{exchange}:{market}:{outcome}:{iv} - JSON []Candle
//	book:{exchange}:{market}:{outcome}         - JSON OrderBook
type ResponseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResponseCache creates a ResponseCache backed by the given Client. A
// non-positive ttl falls back to 30 seconds.
func NewResponseCache(c *Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ResponseCache{rdb: c.rdb, ttl: ttl}
}

func marketsKey(exchange domain.Exchange, limit int) string {
	return fmt.Sprintf("mkts:%s:%d", exchange, limit)
}

func candlesKey(exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) string {
	return fmt.Sprintf("candles:%s:%s:%s:%s", exchange, marketID, outcomeID, interval)
}

func bookKey(exchange domain.Exchange, marketID, outcomeID string) string {
	return fmt.Sprintf("book:%s:%s:%s", exchange, marketID, outcomeID)
}

// GetMarkets retrieves a cached default listing.
// It returns domain.ErrNotFound when the key does not exist.
func (rc *ResponseCache) GetMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error) {
	var markets []domain.Market
	if err := rc.get(ctx, marketsKey(exchange, limit), &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// SetMarkets stores a default listing.
func (rc *ResponseCache) SetMarkets(ctx context.Context, exchange domain.Exchange, limit int, markets []domain.Market) error {
	return rc.set(ctx, marketsKey(exchange, limit), markets)
}

// GetCandles retrieves a cached candle series.
func (rc *ResponseCache) GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error) {
	var candles []domain.Candle
	if err := rc.get(ctx, candlesKey(exchange, marketID, outcomeID, interval), &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

// SetCandles stores a candle series.
func (rc *ResponseCache) SetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval, candles []domain.Candle) error {
	return rc.set(ctx, candlesKey(exchange, marketID, outcomeID, interval), candles)
}

// GetBook retrieves a cached order book snapshot.
func (rc *ResponseCache) GetBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error) {
	var book domain.OrderBook
	if err := rc.get(ctx, bookKey(exchange, marketID, outcomeID), &book); err != nil {
		return domain.OrderBook{}, err
	}
	return book, nil
}

// SetBook stores an order book snapshot.
func (rc *ResponseCache) SetBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, book domain.OrderBook) error {
	return rc.set(ctx, bookKey(exchange, marketID, outcomeID), book)
}

func (rc *ResponseCache) get(ctx context.Context, key string, dst any) error {
	data, err := rc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("redis: unmarshal %s: %w", key, err)
	}
	return nil
}

func (rc *ResponseCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: marshal %s: %w", key, err)
	}
	if err := rc.rdb.Set(ctx, key, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"marketdeck/internal/domain"
)

// GetCandles returns the OHLCV series for one outcome of a market.
func (c *Client) GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error) {
	if interval == "" {
		interval = domain.IntervalDefault
	}
	params := url.Values{}
	params.Set("exchange", string(exchange))
	params.Set("market", marketID)
	params.Set("outcome", outcomeID)
	params.Set("interval", string(interval))

	data, err := c.doGet(ctx, "/api/candles?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("backend: get candles %s/%s: %w", marketID, outcomeID, err)
	}

	var candles []domain.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("backend: decode candles: %w", err)
	}
	return candles, nil
}

// GetOrderBook returns the current order book snapshot for one outcome.
func (c *Client) GetOrderBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error) {
	params := url.Values{}
	params.Set("exchange", string(exchange))
	params.Set("market", marketID)
	params.Set("outcome", outcomeID)

	data, err := c.doGet(ctx, "/api/orderbook?"+params.Encode())
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("backend: get orderbook %s/%s: %w", marketID, outcomeID, err)
	}

	var book domain.OrderBook
	if err := json.Unmarshal(data, &book); err != nil {
		return domain.OrderBook{}, fmt.Errorf("backend: decode orderbook: %w", err)
	}
	if book.OutcomeID == "" {
		book.OutcomeID = outcomeID
	}
	return book, nil
}

// GetStockQuotes returns quotes for the given symbols.
func (c *Client) GetStockQuotes(ctx context.Context, symbols []string) ([]domain.StockQuote, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))

	data, err := c.doGet(ctx, "/api/stocks?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("backend: get stock quotes: %w", err)
	}

	var quotes []domain.StockQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("backend: decode stock quotes: %w", err)
	}
	return quotes, nil
}

// GetIndices returns the major index levels for the indices strip.
func (c *Client) GetIndices(ctx context.Context) ([]domain.IndexQuote, error) {
	data, err := c.doGet(ctx, "/api/indices")
	if err != nil {
		return nil, fmt.Errorf("backend: get indices: %w", err)
	}

	var indices []domain.IndexQuote
	if err := json.Unmarshal(data, &indices); err != nil {
		return nil, fmt.Errorf("backend: decode indices: %w", err)
	}
	return indices, nil
}

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"marketdeck/internal/domain"
)

// ListMarkets returns the default market listing for an exchange.
func (c *Client) ListMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("exchange", string(exchange))
	params.Set("limit", strconv.Itoa(limit))

	data, err := c.doGet(ctx, "/api/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("backend: list markets: %w", err)
	}

	var markets []domain.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("backend: decode markets: %w", err)
	}
	return markets, nil
}

// SearchMarkets returns markets matching the given query string.
func (c *Client) SearchMarkets(ctx context.Context, exchange domain.Exchange, query string) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("exchange", string(exchange))
	params.Set("q", query)

	data, err := c.doGet(ctx, "/api/markets/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("backend: search markets: %w", err)
	}

	var markets []domain.Market
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("backend: decode search results: %w", err)
	}
	return markets, nil
}

// GetMarket returns a single market by its ID.
func (c *Client) GetMarket(ctx context.Context, exchange domain.Exchange, id string) (domain.Market, error) {
	params := url.Values{}
	params.Set("exchange", string(exchange))
	path := fmt.Sprintf("/api/markets/%s?%s", url.PathEscape(id), params.Encode())

	data, err := c.doGet(ctx, path)
	if err != nil {
		return domain.Market{}, fmt.Errorf("backend: get market %s: %w", id, err)
	}

	var market domain.Market
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.Market{}, fmt.Errorf("backend: decode market: %w", err)
	}
	return market, nil
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"marketdeck/internal/domain"
)

// MarketData defines the read-through operations the market handler needs.
type MarketData interface {
	ListMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error)
	SearchMarkets(ctx context.Context, exchange domain.Exchange, query string) ([]domain.Market, error)
	GetMarket(ctx context.Context, exchange domain.Exchange, id string) (domain.Market, error)
	GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error)
	GetOrderBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error)
}

// MarketHandler serves the stateless market-data gateway endpoints. Unlike
// the dashboard endpoints these do not touch view state; they exist for
// panels that fetch on their own schedule.
type MarketHandler struct {
	data            MarketData
	defaultExchange domain.Exchange
	defaultLimit    int
	logger          *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(data MarketData, defaultExchange domain.Exchange, defaultLimit int, logger *slog.Logger) *MarketHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &MarketHandler{
		data:            data,
		defaultExchange: defaultExchange,
		defaultLimit:    defaultLimit,
		logger:          logger,
	}
}

// ListMarkets returns the market listing, or search results when ?q= is a
// non-blank query.
// GET /api/markets?exchange=polymarket&limit=50&q=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	exchange := exchangeParam(r, h.defaultExchange)

	if q := r.URL.Query().Get("q"); q != "" {
		markets, err := h.data.SearchMarkets(r.Context(), exchange, q)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "handler: search markets failed",
				slog.String("query", q),
				slog.String("error", err.Error()),
			)
			writeError(w, statusForErr(err), err.Error())
			return
		}
		writeData(w, http.StatusOK, markets)
		return
	}

	limit := h.defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	markets, err := h.data.ListMarkets(r.Context(), exchange, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("exchange", string(exchange)),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, markets)
}

// GetMarket returns a single market by ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	market, err := h.data.GetMarket(r.Context(), exchangeParam(r, h.defaultExchange), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.String("market_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, market)
}

// GetCandles returns the OHLCV series for one outcome of a market.
// GET /api/markets/{id}/candles?outcome=&interval=
func (h *MarketHandler) GetCandles(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	outcome := r.URL.Query().Get("outcome")
	if id == "" || outcome == "" {
		writeError(w, http.StatusBadRequest, "missing market id or outcome")
		return
	}
	interval := domain.CandleInterval(r.URL.Query().Get("interval"))

	candles, err := h.data.GetCandles(r.Context(), exchangeParam(r, h.defaultExchange), id, outcome, interval)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get candles failed",
			slog.String("market_id", id),
			slog.String("outcome_id", outcome),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, candles)
}

// GetOrderBook returns the order book snapshot for one outcome of a market.
// GET /api/markets/{id}/book?outcome=
func (h *MarketHandler) GetOrderBook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	outcome := r.URL.Query().Get("outcome")
	if id == "" || outcome == "" {
		writeError(w, http.StatusBadRequest, "missing market id or outcome")
		return
	}

	book, err := h.data.GetOrderBook(r.Context(), exchangeParam(r, h.defaultExchange), id, outcome)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get orderbook failed",
			slog.String("market_id", id),
			slog.String("outcome_id", outcome),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, book)
}

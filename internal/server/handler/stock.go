package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"marketdeck/internal/domain"
)

// Quotes defines the stock/index reads the stock handler needs.
type Quotes interface {
	GetStockQuotes(ctx context.Context, symbols []string) ([]domain.StockQuote, error)
	GetIndices(ctx context.Context) ([]domain.IndexQuote, error)
}

// StockHandler serves the stocks and indices panels.
type StockHandler struct {
	quotes         Quotes
	defaultSymbols []string
	logger         *slog.Logger
}

// NewStockHandler creates a StockHandler.
func NewStockHandler(quotes Quotes, defaultSymbols []string, logger *slog.Logger) *StockHandler {
	return &StockHandler{
		quotes:         quotes,
		defaultSymbols: defaultSymbols,
		logger:         logger,
	}
}

// GetStocks returns quotes for ?symbols= (comma-separated) or the configured
// default watch list.
// GET /api/stocks?symbols=SPY,AAPL
func (h *StockHandler) GetStocks(w http.ResponseWriter, r *http.Request) {
	symbols := h.defaultSymbols
	if v := r.URL.Query().Get("symbols"); v != "" {
		var parsed []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				parsed = append(parsed, strings.ToUpper(s))
			}
		}
		if len(parsed) > 0 {
			symbols = parsed
		}
	}

	quotes, err := h.quotes.GetStockQuotes(r.Context(), symbols)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get stocks failed",
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, quotes)
}

// GetIndices returns the major index levels.
// GET /api/indices
func (h *StockHandler) GetIndices(w http.ResponseWriter, r *http.Request) {
	indices, err := h.quotes.GetIndices(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get indices failed",
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, indices)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"marketdeck/internal/viewstate"
)

// Dashboard defines the view-state operations the dashboard handler drives.
// It is declared locally so the handler package does not depend on the
// concrete controller implementation.
type Dashboard interface {
	Snapshot() viewstate.Snapshot
	LoadMarkets(ctx context.Context) error
	Search(ctx context.Context, query string) error
	SelectExchange(ctx context.Context, name string) error
	SelectMarket(ctx context.Context, id string) error
	SelectOutcome(ctx context.Context, outcomeID string) error
}

// DashboardHandler serves the view-state endpoints.
type DashboardHandler struct {
	dash   Dashboard
	logger *slog.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dash Dashboard, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{dash: dash, logger: logger}
}

// GetState returns the full view-state snapshot.
// GET /api/dashboard
func (h *DashboardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.dash.Snapshot())
}

// selectExchangeRequest is the body of POST /api/dashboard/exchange.
type selectExchangeRequest struct {
	Exchange string `json:"exchange"`
}

// SelectExchange switches the data source and reloads the listing.
// POST /api/dashboard/exchange
func (h *DashboardHandler) SelectExchange(w http.ResponseWriter, r *http.Request) {
	var req selectExchangeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.dash.SelectExchange(r.Context(), req.Exchange); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: select exchange failed",
			slog.String("exchange", req.Exchange),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, h.dash.Snapshot())
}

// selectMarketRequest is the body of POST /api/dashboard/market.
type selectMarketRequest struct {
	MarketID string `json:"market_id"`
}

// SelectMarket selects a market; the outcome resets to the first available.
// POST /api/dashboard/market
func (h *DashboardHandler) SelectMarket(w http.ResponseWriter, r *http.Request) {
	var req selectMarketRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MarketID == "" {
		writeError(w, http.StatusBadRequest, "missing market_id")
		return
	}

	if err := h.dash.SelectMarket(r.Context(), req.MarketID); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: select market failed",
			slog.String("market_id", req.MarketID),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, h.dash.Snapshot())
}

// selectOutcomeRequest is the body of POST /api/dashboard/outcome.
type selectOutcomeRequest struct {
	OutcomeID string `json:"outcome_id"`
}

// SelectOutcome switches the outcome sub-selection within the current market.
// POST /api/dashboard/outcome
func (h *DashboardHandler) SelectOutcome(w http.ResponseWriter, r *http.Request) {
	var req selectOutcomeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OutcomeID == "" {
		writeError(w, http.StatusBadRequest, "missing outcome_id")
		return
	}

	if err := h.dash.SelectOutcome(r.Context(), req.OutcomeID); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: select outcome failed",
			slog.String("outcome_id", req.OutcomeID),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, h.dash.Snapshot())
}

// searchRequest is the body of POST /api/dashboard/search.
type searchRequest struct {
	Query string `json:"query"`
}

// Search runs a market search; a blank query reloads the default listing.
// POST /api/dashboard/search
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.dash.Search(r.Context(), req.Query); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: search failed",
			slog.String("query", req.Query),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, h.dash.Snapshot())
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketdeck/internal/domain"
	"marketdeck/internal/viewstate"
)

// stubDashboard records the last operation invoked and returns a fixed error.
type stubDashboard struct {
	err  error
	snap viewstate.Snapshot

	lastOp    string
	lastArg   string
	loadCalls int
}

func (s *stubDashboard) Snapshot() viewstate.Snapshot { return s.snap }

func (s *stubDashboard) LoadMarkets(ctx context.Context) error {
	s.loadCalls++
	return s.err
}

func (s *stubDashboard) Search(ctx context.Context, query string) error {
	s.lastOp, s.lastArg = "search", query
	return s.err
}

func (s *stubDashboard) SelectExchange(ctx context.Context, name string) error {
	s.lastOp, s.lastArg = "exchange", name
	return s.err
}

func (s *stubDashboard) SelectMarket(ctx context.Context, id string) error {
	s.lastOp, s.lastArg = "market", id
	return s.err
}

func (s *stubDashboard) SelectOutcome(ctx context.Context, outcomeID string) error {
	s.lastOp, s.lastArg = "outcome", outcomeID
	return s.err
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) domain.Envelope {
	t.Helper()
	var env domain.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestGetState_WrapsSnapshotInEnvelope(t *testing.T) {
	stub := &stubDashboard{snap: viewstate.Snapshot{Exchange: domain.ExchangeKalshi}}
	h := NewDashboardHandler(stub, slog.Default())

	rec := httptest.NewRecorder()
	h.GetState(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatal("expected success envelope")
	}

	var snap viewstate.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Exchange != domain.ExchangeKalshi {
		t.Errorf("exchange = %s", snap.Exchange)
	}
}

func TestSelectMarket_PassesIDAndReturnsSnapshot(t *testing.T) {
	stub := &stubDashboard{}
	h := NewDashboardHandler(stub, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/market", strings.NewReader(`{"market_id":"m42"}`))
	h.SelectMarket(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if stub.lastOp != "market" || stub.lastArg != "m42" {
		t.Errorf("op = %s/%s", stub.lastOp, stub.lastArg)
	}
}

func TestSelectMarket_MissingID(t *testing.T) {
	h := NewDashboardHandler(&stubDashboard{}, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/market", strings.NewReader(`{}`))
	h.SelectMarket(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Success {
		t.Error("expected failure envelope")
	}
}

func TestSelectMarket_NotFoundMapsTo404(t *testing.T) {
	stub := &stubDashboard{err: fmt.Errorf("select market: %w", domain.ErrNotFound)}
	h := NewDashboardHandler(stub, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/market", strings.NewReader(`{"market_id":"nope"}`))
	h.SelectMarket(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSelectOutcome_NoSelectionMapsTo400(t *testing.T) {
	stub := &stubDashboard{err: fmt.Errorf("select outcome: %w", domain.ErrNoSelection)}
	h := NewDashboardHandler(stub, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/outcome", strings.NewReader(`{"outcome_id":"o1"}`))
	h.SelectOutcome(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSearch_ForwardsQueryIncludingBlank(t *testing.T) {
	stub := &stubDashboard{}
	h := NewDashboardHandler(stub, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/search", strings.NewReader(`{"query":""}`))
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Blank queries reach the controller, which reloads the default listing.
	if stub.lastOp != "search" || stub.lastArg != "" {
		t.Errorf("op = %s/%q", stub.lastOp, stub.lastArg)
	}
}

func TestSelectExchange_InvalidBody(t *testing.T) {
	h := NewDashboardHandler(&stubDashboard{}, slog.Default())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/exchange", strings.NewReader(`{not json`))
	h.SelectExchange(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketdeck/internal/domain"
)

func proxyMux(upstream string) *http.ServeMux {
	h := NewProxyHandler(upstream, 5*time.Second, slog.Default())
	mux := http.NewServeMux()
	mux.HandleFunc("/api/proxy/{path...}", h.Forward)
	return mux
}

func TestProxy_RelaysStatusAndBodyVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/markets" {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("exchange") != "kalshi" {
			t.Errorf("query not forwarded: %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Backend-Version", "2.3.1")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"teapot"}}`))
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy/api/markets?exchange=kalshi", nil)
	proxyMux(upstream.URL).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if got := rec.Body.String(); got != `{"success":false,"error":{"message":"teapot"}}` {
		t.Errorf("body not relayed verbatim: %q", got)
	}
	if got := rec.Header().Get("X-Backend-Version"); got != "2.3.1" {
		t.Errorf("upstream header dropped, got %q", got)
	}
}

func TestProxy_ForwardsMethodAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"market_id":"m1"}` {
			t.Errorf("body = %q", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`ok`))
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/proxy/api/analysis/sentiment", strings.NewReader(`{"market_id":"m1"}`))
	proxyMux(upstream.URL).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestProxy_StripsHopHeaders(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Proxy-Authorization"); got != "" {
			t.Errorf("hop header forwarded: %q", got)
		}
		if got := r.Header.Get("X-Custom"); got != "kept" {
			t.Errorf("end-to-end header dropped: %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy/api/health", nil)
	req.Header.Set("Proxy-Authorization", "Basic secret")
	req.Header.Set("X-Custom", "kept")
	proxyMux(upstream.URL).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestProxy_UpstreamDownBecomesFailureEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused from here on

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy/api/markets", nil)
	proxyMux(upstream.URL).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var env domain.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Success {
		t.Error("expected success=false")
	}
	if env.Error == nil || env.Error.Message != "upstream request failed" {
		t.Errorf("unexpected error: %+v", env.Error)
	}
}

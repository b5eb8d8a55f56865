package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdeck/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func writeEnvelope(w http.ResponseWriter, status int, env domain.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestListMarkets_UnwrapsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/markets", r.URL.Path)
		require.Equal(t, "polymarket", r.URL.Query().Get("exchange"))
		require.Equal(t, "25", r.URL.Query().Get("limit"))

		data, _ := json.Marshal([]domain.Market{
			{ID: "m1", Title: "Rain tomorrow", Outcomes: []domain.Outcome{{ID: "o1", Label: "Yes", Price: 0.6}}},
		})
		writeEnvelope(w, http.StatusOK, domain.Envelope{Success: true, Data: data})
	})

	markets, err := client.ListMarkets(context.Background(), domain.ExchangePolymarket, 25)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	require.Equal(t, "m1", markets[0].ID)
	require.Equal(t, "Yes", markets[0].Outcomes[0].Label)
}

func TestListMarkets_DefaultsLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "50", r.URL.Query().Get("limit"))
		writeEnvelope(w, http.StatusOK, domain.Envelope{Success: true, Data: json.RawMessage(`[]`)})
	})

	_, err := client.ListMarkets(context.Background(), domain.ExchangePolymarket, 0)
	require.NoError(t, err)
}

func TestDo_FailureEnvelopeBecomesBackendFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadGateway, domain.Envelope{
			Success: false,
			Error:   &domain.EnvelopeError{Message: "kalshi rate limited"},
		})
	})

	_, err := client.ListMarkets(context.Background(), domain.ExchangeKalshi, 10)
	require.ErrorIs(t, err, domain.ErrBackendFailure)
	require.Contains(t, err.Error(), "kalshi rate limited")
}

func TestDo_NotFoundBecomesErrNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, domain.Envelope{
			Success: false,
			Error:   &domain.EnvelopeError{Message: "market not found"},
		})
	})

	_, err := client.GetMarket(context.Background(), domain.ExchangePolymarket, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDo_FailureWithoutMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, domain.Envelope{Success: false})
	})

	_, err := client.ListMarkets(context.Background(), domain.ExchangePolymarket, 10)
	require.ErrorIs(t, err, domain.ErrBackendFailure)
	require.Contains(t, err.Error(), "unknown error")
}

func TestDo_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.ListMarkets(context.Background(), domain.ExchangePolymarket, 10)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode envelope")
}

func TestAnalyze_DecodesKindPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/analysis/sentiment", r.URL.Path)

		var req domain.AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "m1", req.MarketID)

		writeEnvelope(w, http.StatusOK, domain.Envelope{
			Success: true,
			Data:    json.RawMessage(`{"score":0.7,"label":"bullish","summary":"strong yes flow"}`),
		})
	})

	result, err := client.Analyze(context.Background(), domain.AnalysisSentiment, domain.AnalysisRequest{MarketID: "m1"})
	require.NoError(t, err)
	require.Equal(t, domain.AnalysisSentiment, result.Kind)
	require.NotNil(t, result.Sentiment)
	require.Equal(t, "bullish", result.Sentiment.Label)
	require.Nil(t, result.Prediction)
}

func TestAnalyze_TimeoutYieldsAnalysisTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	client := New(Config{BaseURL: srv.URL, AnalysisTimeout: 50 * time.Millisecond})

	_, err := client.Analyze(context.Background(), domain.AnalysisPrediction, domain.AnalysisRequest{MarketID: "m1"})
	require.ErrorIs(t, err, domain.ErrAnalysisTimeout)
	require.Contains(t, err.Error(), "after 50ms")
	require.NotErrorIs(t, err, domain.ErrBackendFailure)
}

func TestAnalyze_NotCappedByRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Slower than the request timeout, well inside the analysis timeout.
		time.Sleep(300 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, domain.Envelope{
			Success: true,
			Data:    json.RawMessage(`{"score":0.1,"label":"neutral"}`),
		})
	}))
	defer srv.Close()

	client := New(Config{
		BaseURL:         srv.URL,
		RequestTimeout:  50 * time.Millisecond,
		AnalysisTimeout: 5 * time.Second,
	})

	start := time.Now()
	result, err := client.Analyze(context.Background(), domain.AnalysisSentiment, domain.AnalysisRequest{MarketID: "m1"})
	require.NoError(t, err)
	require.NotNil(t, result.Sentiment)
	require.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)

	// The request timeout still applies to market-data reads.
	_, err = client.ListMarkets(context.Background(), domain.ExchangePolymarket, 10)
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrAnalysisTimeout)
}

func TestChat_NotCappedByRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, domain.Envelope{
			Success: true,
			Data:    json.RawMessage(`{"reply":"still here"}`),
		})
	}))
	defer srv.Close()

	client := New(Config{
		BaseURL:         srv.URL,
		RequestTimeout:  50 * time.Millisecond,
		AnalysisTimeout: 5 * time.Second,
	})

	reply, err := client.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Equal(t, "still here", reply)
}

func TestChat_ReturnsReply(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Equal(t, "user", req.Messages[0].Role)

		writeEnvelope(w, http.StatusOK, domain.Envelope{
			Success: true,
			Data:    json.RawMessage(`{"reply":"Priced at 60 cents."}`),
		})
	})

	reply, err := client.Chat(context.Background(), []domain.ChatMessage{
		{ID: "c1", Role: "user", Content: "what are the odds?"},
	})
	require.NoError(t, err)
	require.Equal(t, "Priced at 60 cents.", reply)
}

func TestChat_TimeoutYieldsAnalysisTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	client := New(Config{BaseURL: srv.URL, AnalysisTimeout: 50 * time.Millisecond})

	_, err := client.Chat(context.Background(), []domain.ChatMessage{{Role: "user", Content: "hi"}})
	require.ErrorIs(t, err, domain.ErrAnalysisTimeout)
}

func TestGetOrderBook_BackfillsOutcomeID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Backend omits outcome_id from the book payload.
		writeEnvelope(w, http.StatusOK, domain.Envelope{
			Success: true,
			Data:    json.RawMessage(`{"bids":[{"price":0.59,"size":100}],"asks":[{"price":0.61,"size":80}]}`),
		})
	})

	book, err := client.GetOrderBook(context.Background(), domain.ExchangePolymarket, "m1", "o1")
	require.NoError(t, err)
	require.Equal(t, "o1", book.OutcomeID)

	require.Equal(t, 0.59, book.BestBid())
	require.Equal(t, 0.61, book.BestAsk())
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:8001/"})
	if got := c.BaseURL(); got != "http://localhost:8001" {
		t.Errorf("BaseURL() = %q", got)
	}
	if !strings.HasPrefix(c.baseURL, "http://") {
		t.Errorf("unexpected baseURL %q", c.baseURL)
	}
}

func TestDo_ContextCanceledIsNotTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, domain.Envelope{Success: true, Data: json.RawMessage(`[]`)})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListMarkets(ctx, domain.ExchangePolymarket, 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.NotErrorIs(t, err, domain.ErrAnalysisTimeout)
}

// Package backend is the REST client for the upstream analytics backend. The
// backend is an opaque collaborator: every endpoint speaks JSON wrapped in the
// shared success/error envelope, and this package's job is request
// composition, envelope unwrapping, and error classification. No retries and
// no backoff; failures surface immediately to the caller.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketdeck/internal/domain"
)

// Client calls the upstream analytics backend. Market-data reads go through
// httpClient, which enforces the request timeout. Analysis and chat calls go
// through analysisClient, which has no client-level timeout: those calls are
// bounded per call by the analysis-timeout context, so the much shorter
// request timeout never cuts them off early.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	analysisClient  *http.Client
	analysisTimeout time.Duration
}

// Config holds the client construction parameters.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8001".
	BaseURL string
	// RequestTimeout bounds market-data calls. Zero means 30s.
	RequestTimeout time.Duration
	// AnalysisTimeout bounds analysis and chat calls. Zero means 45s.
	AnalysisTimeout time.Duration
}

// New creates a backend Client.
func New(cfg Config) *Client {
	reqTimeout := cfg.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = 30 * time.Second
	}
	analysisTimeout := cfg.AnalysisTimeout
	if analysisTimeout <= 0 {
		analysisTimeout = 45 * time.Second
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:      &http.Client{Timeout: reqTimeout},
		analysisClient:  &http.Client{},
		analysisTimeout: analysisTimeout,
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doGet sends a GET request with the request-timeout client and returns the
// unwrapped envelope data.
func (c *Client) doGet(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, c.httpClient, http.MethodGet, path, nil)
}

// doPost sends a JSON POST request and returns the unwrapped envelope data.
// POSTs are analysis and chat calls, so they use the untimed client; the
// caller's context carries the deadline.
func (c *Client) doPost(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, c.analysisClient, http.MethodPost, path, body)
}

// do sends a request through the given client, reads the body, and unwraps
// the response envelope. A success:false envelope becomes
// domain.ErrBackendFailure carrying the backend's message; transport errors
// are returned as-is (wrapped).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		msg := "unknown error"
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrBackendFailure, msg)
	}

	return env.Data, nil
}

// classifyTimeout maps a context deadline hit on an analysis call to the
// timeout sentinel so callers can show a timeout-specific message instead of
// a generic network failure.
func (c *Client) classifyTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", domain.ErrAnalysisTimeout, c.analysisTimeout)
	}
	return err
}

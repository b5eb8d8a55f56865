package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ProxyHandler forwards requests verbatim to the fixed upstream backend
// origin. The upstream status code and body are relayed unchanged; the
// gateway adds nothing and strips nothing. Only a transport failure is
// rewritten — into a 500 failure envelope — because there is no upstream
// response to relay.
type ProxyHandler struct {
	upstream   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewProxyHandler creates a ProxyHandler forwarding to the given origin,
// e.g. "http://localhost:8001".
func NewProxyHandler(upstream string, timeout time.Duration, logger *slog.Logger) *ProxyHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProxyHandler{
		upstream:   strings.TrimRight(upstream, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// hopHeaders are connection-scoped headers that must not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forward relays the request to the upstream origin.
// ANY /api/proxy/{path...}
func (h *ProxyHandler) Forward(w http.ResponseWriter, r *http.Request) {
	path := "/" + r.PathValue("path")
	target := h.upstream + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "proxy: build request: "+err.Error())
		return
	}
	req.Header = r.Header.Clone()
	for _, hh := range hopHeaders {
		req.Header.Del(hh)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "proxy: upstream request failed",
			slog.String("method", r.Method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "upstream request failed")
		return
	}
	defer resp.Body.Close()

	for k, vs := range resp.Header {
		if isHopHeader(k) {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Status and possibly part of the body are already written; the
		// client sees a truncated response. Nothing left to do but log.
		h.logger.WarnContext(r.Context(), "proxy: copy response failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func isHopHeader(name string) bool {
	for _, hh := range hopHeaders {
		if strings.EqualFold(name, hh) {
			return true
		}
	}
	return false
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"marketdeck/internal/domain"
)

// writeData marshals v into a success envelope and writes it with the given
// HTTP status code. If marshaling fails, it falls back to a plain 500.
func writeData(w http.ResponseWriter, status int, v any) {
	env, err := domain.OKEnvelope(v)
	if err != nil {
		http.Error(w, `{"success":false,"error":{"message":"internal server error"}}`, http.StatusInternalServerError)
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		http.Error(w, `{"success":false,"error":{"message":"internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a failure envelope with the given status and message.
func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(domain.FailEnvelope(msg))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// statusForErr maps the gateway's error taxonomy onto HTTP status codes:
// not-found -> 404, analysis timeout -> 504, backend-reported failure -> 502,
// anything else (including network failures) -> 500.
func statusForErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAnalysisTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrBackendFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNoSelection), errors.Is(err, domain.ErrUnknownExchange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// exchangeParam reads the ?exchange= query parameter, defaulting when blank.
func exchangeParam(r *http.Request, fallback domain.Exchange) domain.Exchange {
	if v := strings.TrimSpace(r.URL.Query().Get("exchange")); v != "" {
		return domain.Exchange(strings.ToLower(v))
	}
	return fallback
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

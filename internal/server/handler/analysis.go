package handler

import (
	"context"
	"log/slog"
	"net/http"

	"marketdeck/internal/domain"
)

// Analyzer defines the AI operations the analysis handler drives. The
// controller implements it so results also land in the analysis panels.
type Analyzer interface {
	RunAnalysis(ctx context.Context, kind domain.AnalysisKind, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	SendChat(ctx context.Context, text string) (domain.ChatMessage, error)
}

// AnalysisHandler serves the AI analysis and chat endpoints.
type AnalysisHandler struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(analyzer Analyzer, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, logger: logger}
}

// RunAnalysis runs one analysis kind against the backend. A timed-out call
// returns 504 with the timeout message in the error envelope.
// POST /api/analysis/{kind}
func (h *AnalysisHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseAnalysisKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req domain.AnalysisRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.analyzer.RunAnalysis(r.Context(), kind, req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: analysis failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, result)
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Message string `json:"message"`
}

// Chat appends a user message to the conversation and returns the
// assistant's reply.
// POST /api/chat
func (h *AnalysisHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing message")
		return
	}

	reply, err := h.analyzer.SendChat(r.Context(), req.Message)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: chat failed",
			slog.String("error", err.Error()),
		)
		writeError(w, statusForErr(err), err.Error())
		return
	}
	writeData(w, http.StatusOK, reply)
}

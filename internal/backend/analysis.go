package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"marketdeck/internal/domain"
)

// Analyze runs one AI analysis on the backend. The call is bounded by the
// client's analysis timeout; hitting it yields domain.ErrAnalysisTimeout so
// the caller can surface a timeout-specific message.
func (c *Client) Analyze(ctx context.Context, kind domain.AnalysisKind, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.analysisTimeout)
	defer cancel()

	path := fmt.Sprintf("/api/analysis/%s", url.PathEscape(string(kind)))
	data, err := c.doPost(ctx, path, req)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("backend: analyze %s: %w", kind, c.classifyTimeout(err))
	}

	result, err := domain.DecodeAnalysisResult(kind, data)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("backend: %w", err)
	}
	return result, nil
}

// chatRequest is the wire shape of a chat call.
type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// chatResponse is the wire shape of a chat reply.
type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat sends the conversation so far and returns the assistant's reply text.
// Like Analyze it is bounded by the analysis timeout.
func (c *Client) Chat(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.analysisTimeout)
	defer cancel()

	data, err := c.doPost(ctx, "/api/chat", chatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("backend: chat: %w", c.classifyTimeout(err))
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("backend: decode chat reply: %w", err)
	}
	return resp.Reply, nil
}

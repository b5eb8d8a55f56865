package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AnalysisKind selects which backend analysis endpoint a request targets.
type AnalysisKind string

const (
	AnalysisSentiment   AnalysisKind = "sentiment"
	AnalysisPrediction  AnalysisKind = "prediction"
	AnalysisNews        AnalysisKind = "news"
	AnalysisAnomaly     AnalysisKind = "anomaly"
	AnalysisPortfolio   AnalysisKind = "portfolio"
	AnalysisAlerts      AnalysisKind = "alerts"
	AnalysisExplanation AnalysisKind = "explanation"
)

// ParseAnalysisKind validates a kind string from a URL path or request body.
func ParseAnalysisKind(s string) (AnalysisKind, error) {
	switch k := AnalysisKind(s); k {
	case AnalysisSentiment, AnalysisPrediction, AnalysisNews, AnalysisAnomaly,
		AnalysisPortfolio, AnalysisAlerts, AnalysisExplanation:
		return k, nil
	default:
		return "", fmt.Errorf("unknown analysis kind %q", s)
	}
}

// AnalysisRequest carries the context for an analysis call. MarketID is
// optional for portfolio and alerts, which operate on the whole dashboard.
type AnalysisRequest struct {
	MarketID  string   `json:"market_id,omitempty"`
	OutcomeID string   `json:"outcome_id,omitempty"`
	Exchange  Exchange `json:"exchange,omitempty"`
	Symbols   []string `json:"symbols,omitempty"`
	Prompt    string   `json:"prompt,omitempty"`
}

// SentimentResult summarizes market sentiment.
type SentimentResult struct {
	Score   float64 `json:"score"` // -1 (bearish) .. 1 (bullish)
	Label   string  `json:"label"`
	Summary string  `json:"summary,omitempty"`
}

// PredictionResult is the backend's probability forecast for an outcome.
type PredictionResult struct {
	Probability float64 `json:"probability"`
	Confidence  float64 `json:"confidence"`
	Horizon     string  `json:"horizon,omitempty"`
	Rationale   string  `json:"rationale,omitempty"`
}

// NewsItem is one headline with its estimated market impact.
type NewsItem struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Impact      float64   `json:"impact"` // -1 .. 1
	URL         string    `json:"url,omitempty"`
}

// NewsResult is the news-impact analysis payload.
type NewsResult struct {
	Items   []NewsItem `json:"items"`
	Summary string     `json:"summary,omitempty"`
}

// AnomalyResult flags unusual price or volume behavior.
type AnomalyResult struct {
	IsAnomaly bool    `json:"is_anomaly"`
	Type      string  `json:"anomaly_type,omitempty"` // price_spike, volume_spike, gap
	Score     float64 `json:"anomaly_score"`          // 0 .. 1
	Details   string  `json:"details,omitempty"`
}

// PortfolioResult carries portfolio-level advice.
type PortfolioResult struct {
	Advice      string   `json:"advice"`
	RiskLevel   string   `json:"risk_level,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Alert is a single triggered alert condition.
type Alert struct {
	MarketID  string    `json:"market_id"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity,omitempty"`
	Triggered time.Time `json:"triggered_at"`
}

// AlertsResult is the alerts analysis payload.
type AlertsResult struct {
	Alerts []Alert `json:"alerts"`
}

// ExplanationResult is a plain-language explanation of a market or move.
type ExplanationResult struct {
	Text string `json:"text"`
}

// AnalysisResult is the tagged union of all analysis payloads. Exactly one
// payload pointer is non-nil, matching Kind.
type AnalysisResult struct {
	Kind        AnalysisKind       `json:"kind"`
	Sentiment   *SentimentResult   `json:"sentiment,omitempty"`
	Prediction  *PredictionResult  `json:"prediction,omitempty"`
	News        *NewsResult        `json:"news,omitempty"`
	Anomaly     *AnomalyResult     `json:"anomaly,omitempty"`
	Portfolio   *PortfolioResult   `json:"portfolio,omitempty"`
	Alerts      *AlertsResult      `json:"alerts,omitempty"`
	Explanation *ExplanationResult `json:"explanation,omitempty"`
}

// DecodeAnalysisResult decodes a raw backend payload into the typed union
// slot for the given kind.
func DecodeAnalysisResult(kind AnalysisKind, raw json.RawMessage) (AnalysisResult, error) {
	res := AnalysisResult{Kind: kind}

	var dst any
	switch kind {
	case AnalysisSentiment:
		res.Sentiment = &SentimentResult{}
		dst = res.Sentiment
	case AnalysisPrediction:
		res.Prediction = &PredictionResult{}
		dst = res.Prediction
	case AnalysisNews:
		res.News = &NewsResult{}
		dst = res.News
	case AnalysisAnomaly:
		res.Anomaly = &AnomalyResult{}
		dst = res.Anomaly
	case AnalysisPortfolio:
		res.Portfolio = &PortfolioResult{}
		dst = res.Portfolio
	case AnalysisAlerts:
		res.Alerts = &AlertsResult{}
		dst = res.Alerts
	case AnalysisExplanation:
		res.Explanation = &ExplanationResult{}
		dst = res.Explanation
	default:
		return AnalysisResult{}, fmt.Errorf("unknown analysis kind %q", kind)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return AnalysisResult{}, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return res, nil
}

// ChatMessage is one turn of the AI chat panel.
type ChatMessage struct {
	ID      string    `json:"id"`
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

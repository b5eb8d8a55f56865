package viewstate

import "marketdeck/internal/domain"

// Snapshot is a point-in-time copy of the entire view state, safe to render
// as JSON after the controller lock is released.
type Snapshot struct {
	Exchange        domain.Exchange `json:"exchange"`
	SelectedMarket  *domain.Market  `json:"selected_market,omitempty"`
	SelectedOutcome string          `json:"selected_outcome,omitempty"`

	Markets PanelState[[]domain.Market]     `json:"markets"`
	Candles PanelState[[]domain.Candle]     `json:"candles"`
	Book    PanelState[domain.OrderBook]    `json:"book"`
	Stocks  PanelState[[]domain.StockQuote] `json:"stocks"`
	Indices PanelState[[]domain.IndexQuote] `json:"indices"`

	Analyses map[domain.AnalysisKind]PanelState[domain.AnalysisResult] `json:"analyses"`
	Chat     PanelState[string]                                        `json:"chat"`
	ChatLog  []domain.ChatMessage                                      `json:"chat_log"`
}

// Snapshot returns a copy of the current view state. Slice headers are
// copied; the underlying records are value types that fetches replace
// wholesale rather than mutate.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Exchange:        c.exchange,
		SelectedOutcome: c.selectedOutcome,
		Markets:         c.markets.state(),
		Candles:         c.candles.state(),
		Book:            c.book.state(),
		Stocks:          c.stocks.state(),
		Indices:         c.indices.state(),
		Analyses:        make(map[domain.AnalysisKind]PanelState[domain.AnalysisResult], len(c.analyses)),
		Chat:            c.chat.state(),
		ChatLog:         append([]domain.ChatMessage(nil), c.chatLog...),
	}
	if c.selectedMarket != nil {
		m := *c.selectedMarket
		snap.SelectedMarket = &m
	}
	for kind, p := range c.analyses {
		snap.Analyses[kind] = p.state()
	}
	return snap
}

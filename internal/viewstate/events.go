package viewstate

import (
	"sync"

	"marketdeck/internal/domain"
)

// EventType enumerates the discrete events the controller emits.
type EventType string

const (
	EventSelectionChanged EventType = "selection_changed"
	EventFetchSucceeded   EventType = "fetch_succeeded"
	EventFetchFailed      EventType = "fetch_failed"
)

// PanelName identifies which panel an event refers to.
type PanelName string

const (
	PanelMarkets  PanelName = "markets"
	PanelCandles  PanelName = "candles"
	PanelBook     PanelName = "book"
	PanelStocks   PanelName = "stocks"
	PanelIndices  PanelName = "indices"
	PanelAnalysis PanelName = "analysis"
	PanelChat     PanelName = "chat"
)

// Event is one discrete view-state transition, published to subscribers
// (the WebSocket hub) after the transition has been applied.
type Event struct {
	Type      EventType           `json:"type"`
	Panel     PanelName           `json:"panel,omitempty"`
	Exchange  domain.Exchange     `json:"exchange,omitempty"`
	MarketID  string              `json:"market_id,omitempty"`
	OutcomeID string              `json:"outcome_id,omitempty"`
	Kind      domain.AnalysisKind `json:"kind,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// subscriberBufferSize is the per-subscriber event channel depth. Slow
// subscribers drop events rather than block the controller.
const subscriberBufferSize = 64

// eventBus fans controller events out to subscribers.
type eventBus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel together with
// an unsubscribe function. The channel is closed on unsubscribe.
func (b *eventBus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBufferSize)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish delivers an event to every subscriber without blocking; a full
// subscriber buffer drops the event for that subscriber only.
func (b *eventBus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

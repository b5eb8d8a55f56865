package viewstate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketdeck/internal/domain"
)

// Fetcher is the set of backend calls the controller needs. It is satisfied
// by *backend.Client and stubbed in tests.
type Fetcher interface {
	ListMarkets(ctx context.Context, exchange domain.Exchange, limit int) ([]domain.Market, error)
	SearchMarkets(ctx context.Context, exchange domain.Exchange, query string) ([]domain.Market, error)
	GetMarket(ctx context.Context, exchange domain.Exchange, id string) (domain.Market, error)
	GetCandles(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string, interval domain.CandleInterval) ([]domain.Candle, error)
	GetOrderBook(ctx context.Context, exchange domain.Exchange, marketID, outcomeID string) (domain.OrderBook, error)
	GetStockQuotes(ctx context.Context, symbols []string) ([]domain.StockQuote, error)
	GetIndices(ctx context.Context) ([]domain.IndexQuote, error)
	Analyze(ctx context.Context, kind domain.AnalysisKind, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	Chat(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Config holds the controller's view-state defaults.
type Config struct {
	DefaultExchange domain.Exchange
	ListLimit       int
	StockSymbols    []string
	Interval        domain.CandleInterval
}

// Controller owns the dashboard's entire view state: the current selection
// (exchange, market, outcome) and one fetch panel per dashboard region.
// At most one market and one outcome are selected at a time; selecting a
// market resets the outcome to the market's first one.
//
// Operations serialize on an internal mutex and run their fetches
// synchronously, so each call observes and leaves consistent state. There is
// no generation tracking: when two callers race, the fetch that completes
// last wins, even if it began first.
type Controller struct {
	fetcher Fetcher
	logger  *slog.Logger
	bus     *eventBus
	cfg     Config

	mu              sync.Mutex
	exchange        domain.Exchange
	selectedMarket  *domain.Market
	selectedOutcome string

	markets  panel[[]domain.Market]
	candles  panel[[]domain.Candle]
	book     panel[domain.OrderBook]
	stocks   panel[[]domain.StockQuote]
	indices  panel[[]domain.IndexQuote]
	analyses map[domain.AnalysisKind]*panel[domain.AnalysisResult]
	chat     panel[string] // last assistant reply
	chatLog  []domain.ChatMessage
}

// NewController creates a Controller with idle panels and the configured
// default exchange selected.
func NewController(fetcher Fetcher, cfg Config, logger *slog.Logger) *Controller {
	if cfg.DefaultExchange == "" {
		cfg.DefaultExchange = domain.ExchangePolymarket
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	if cfg.Interval == "" {
		cfg.Interval = domain.IntervalDefault
	}
	return &Controller{
		fetcher:  fetcher,
		logger:   logger.With(slog.String("component", "viewstate")),
		bus:      newEventBus(),
		cfg:      cfg,
		exchange: cfg.DefaultExchange,
		markets:  newPanel[[]domain.Market](),
		candles:  newPanel[[]domain.Candle](),
		book:     newPanel[domain.OrderBook](),
		stocks:   newPanel[[]domain.StockQuote](),
		indices:  newPanel[[]domain.IndexQuote](),
		analyses: make(map[domain.AnalysisKind]*panel[domain.AnalysisResult]),
	}
}

// Subscribe registers an event subscriber; see eventBus.Subscribe.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	return c.bus.Subscribe()
}

// LoadMarkets fetches the default market listing for the current exchange.
func (c *Controller) LoadMarkets(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadMarketsLocked(ctx)
}

// loadMarketsLocked runs the default-listing fetch. Caller holds the lock.
func (c *Controller) loadMarketsLocked(ctx context.Context) error {
	c.markets.begin()
	markets, err := c.fetcher.ListMarkets(ctx, c.exchange, c.cfg.ListLimit)
	if err != nil {
		c.markets.fail(err)
		c.publishPanel(EventFetchFailed, PanelMarkets, err)
		return fmt.Errorf("viewstate: load markets: %w", err)
	}
	c.markets.succeed(markets)
	c.publishPanel(EventFetchSucceeded, PanelMarkets, nil)
	return nil
}

// Search fetches markets matching query. A blank query re-triggers the
// default listing instead of a search call.
func (c *Controller) Search(ctx context.Context, query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return c.loadMarketsLocked(ctx)
	}

	c.markets.begin()
	markets, err := c.fetcher.SearchMarkets(ctx, c.exchange, query)
	if err != nil {
		c.markets.fail(err)
		c.publishPanel(EventFetchFailed, PanelMarkets, err)
		return fmt.Errorf("viewstate: search markets: %w", err)
	}
	c.markets.succeed(markets)
	c.publishPanel(EventFetchSucceeded, PanelMarkets, nil)
	return nil
}

// SelectExchange switches the upstream data source, clears the market and
// outcome selection along with the dependent panels, and refetches the
// listing.
func (c *Controller) SelectExchange(ctx context.Context, name string) error {
	var exchange domain.Exchange
	switch domain.Exchange(strings.ToLower(name)) {
	case domain.ExchangePolymarket:
		exchange = domain.ExchangePolymarket
	case domain.ExchangeKalshi:
		exchange = domain.ExchangeKalshi
	default:
		return fmt.Errorf("viewstate: %w: %q", domain.ErrUnknownExchange, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.exchange = exchange
	c.selectedMarket = nil
	c.selectedOutcome = ""
	c.candles.reset()
	c.book.reset()
	c.bus.publish(Event{Type: EventSelectionChanged, Exchange: exchange})

	return c.loadMarketsLocked(ctx)
}

// SelectMarket makes the given market the current one and resets the outcome
// selection to the market's first outcome, then refetches the chart and order
// book panels. A market with zero outcomes yields an empty outcome selection
// and suppresses both fetches, leaving those panels idle.
func (c *Controller) SelectMarket(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	market, ok := c.marketFromListLocked(id)
	if !ok {
		fetched, err := c.fetcher.GetMarket(ctx, c.exchange, id)
		if err != nil {
			return fmt.Errorf("viewstate: select market %s: %w", id, err)
		}
		market = fetched
	}

	c.selectedMarket = &market
	c.selectedOutcome = market.FirstOutcomeID()
	c.candles.reset()
	c.book.reset()
	c.bus.publish(Event{
		Type:      EventSelectionChanged,
		Exchange:  c.exchange,
		MarketID:  market.ID,
		OutcomeID: c.selectedOutcome,
	})

	if c.selectedOutcome == "" {
		return nil
	}
	return c.refetchOutcomePanelsLocked(ctx)
}

// SelectOutcome switches the outcome sub-selection within the current market
// and refetches the chart and order book panels.
func (c *Controller) SelectOutcome(ctx context.Context, outcomeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selectedMarket == nil {
		return fmt.Errorf("viewstate: select outcome: %w", domain.ErrNoSelection)
	}
	if _, ok := c.selectedMarket.OutcomeByID(outcomeID); !ok {
		return fmt.Errorf("viewstate: select outcome: %w: %q", domain.ErrNotFound, outcomeID)
	}

	c.selectedOutcome = outcomeID
	c.bus.publish(Event{
		Type:      EventSelectionChanged,
		Exchange:  c.exchange,
		MarketID:  c.selectedMarket.ID,
		OutcomeID: outcomeID,
	})

	return c.refetchOutcomePanelsLocked(ctx)
}

// refetchOutcomePanelsLocked fetches candles and order book for the current
// selection. Both panels are attempted even when the first fails; the errors
// are joined. Caller holds the lock and guarantees a non-empty selection.
func (c *Controller) refetchOutcomePanelsLocked(ctx context.Context) error {
	marketID := c.selectedMarket.ID
	outcomeID := c.selectedOutcome

	var firstErr error

	c.candles.begin()
	candles, err := c.fetcher.GetCandles(ctx, c.exchange, marketID, outcomeID, c.cfg.Interval)
	if err != nil {
		c.candles.fail(err)
		c.publishPanel(EventFetchFailed, PanelCandles, err)
		firstErr = err
	} else {
		c.candles.succeed(candles)
		c.publishPanel(EventFetchSucceeded, PanelCandles, nil)
	}

	c.book.begin()
	book, err := c.fetcher.GetOrderBook(ctx, c.exchange, marketID, outcomeID)
	if err != nil {
		c.book.fail(err)
		c.publishPanel(EventFetchFailed, PanelBook, err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		c.book.succeed(book)
		c.publishPanel(EventFetchSucceeded, PanelBook, nil)
	}

	if firstErr != nil {
		return fmt.Errorf("viewstate: refetch outcome panels: %w", firstErr)
	}
	return nil
}

// RefreshQuotes fetches the stocks and indices panels. Both are attempted
// independently; the first error is returned.
func (c *Controller) RefreshQuotes(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error

	c.stocks.begin()
	quotes, err := c.fetcher.GetStockQuotes(ctx, c.cfg.StockSymbols)
	if err != nil {
		c.stocks.fail(err)
		c.publishPanel(EventFetchFailed, PanelStocks, err)
		firstErr = err
	} else {
		c.stocks.succeed(quotes)
		c.publishPanel(EventFetchSucceeded, PanelStocks, nil)
	}

	c.indices.begin()
	indices, err := c.fetcher.GetIndices(ctx)
	if err != nil {
		c.indices.fail(err)
		c.publishPanel(EventFetchFailed, PanelIndices, err)
		if firstErr == nil {
			firstErr = err
		}
	} else {
		c.indices.succeed(indices)
		c.publishPanel(EventFetchSucceeded, PanelIndices, nil)
	}

	if firstErr != nil {
		return fmt.Errorf("viewstate: refresh quotes: %w", firstErr)
	}
	return nil
}

// RunAnalysis runs one AI analysis and stores the result in the per-kind
// analysis panel. When the request does not name a market, the current
// selection fills in the market, outcome, and exchange.
func (c *Controller) RunAnalysis(ctx context.Context, kind domain.AnalysisKind, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.MarketID == "" && c.selectedMarket != nil {
		req.MarketID = c.selectedMarket.ID
		req.OutcomeID = c.selectedOutcome
	}
	if req.Exchange == "" {
		req.Exchange = c.exchange
	}

	p := c.analysisPanelLocked(kind)
	p.begin()

	result, err := c.fetcher.Analyze(ctx, kind, req)
	if err != nil {
		p.fail(err)
		c.bus.publish(Event{Type: EventFetchFailed, Panel: PanelAnalysis, Kind: kind, Error: err.Error()})
		return domain.AnalysisResult{}, fmt.Errorf("viewstate: run analysis: %w", err)
	}
	p.succeed(result)
	c.bus.publish(Event{Type: EventFetchSucceeded, Panel: PanelAnalysis, Kind: kind})
	return result, nil
}

// SendChat appends the user's message to the chat log, sends the whole
// conversation to the backend, and appends the assistant's reply. On failure
// the user message stays in the log so a retry resends it.
func (c *Controller) SendChat(ctx context.Context, text string) (domain.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.chatLog = append(c.chatLog, domain.ChatMessage{
		ID:      uuid.NewString(),
		Role:    "user",
		Content: text,
		SentAt:  time.Now().UTC(),
	})

	c.chat.begin()
	reply, err := c.fetcher.Chat(ctx, c.chatLog)
	if err != nil {
		c.chat.fail(err)
		c.bus.publish(Event{Type: EventFetchFailed, Panel: PanelChat, Error: err.Error()})
		return domain.ChatMessage{}, fmt.Errorf("viewstate: chat: %w", err)
	}

	msg := domain.ChatMessage{
		ID:      uuid.NewString(),
		Role:    "assistant",
		Content: reply,
		SentAt:  time.Now().UTC(),
	}
	c.chatLog = append(c.chatLog, msg)
	c.chat.succeed(reply)
	c.bus.publish(Event{Type: EventFetchSucceeded, Panel: PanelChat})
	return msg, nil
}

// marketFromListLocked looks a market up in the current listing.
func (c *Controller) marketFromListLocked(id string) (domain.Market, bool) {
	for _, m := range c.markets.value {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Market{}, false
}

// analysisPanelLocked returns the panel for kind, creating it on first use.
func (c *Controller) analysisPanelLocked(kind domain.AnalysisKind) *panel[domain.AnalysisResult] {
	p, ok := c.analyses[kind]
	if !ok {
		np := newPanel[domain.AnalysisResult]()
		p = &np
		c.analyses[kind] = p
	}
	return p
}

// publishPanel emits a fetch completion event for a panel, attaching the
// current selection so subscribers can discard events for stale selections.
func (c *Controller) publishPanel(t EventType, name PanelName, err error) {
	ev := Event{Type: t, Panel: name, Exchange: c.exchange}
	if c.selectedMarket != nil {
		ev.MarketID = c.selectedMarket.ID
		ev.OutcomeID = c.selectedOutcome
	}
	if err != nil {
		ev.Error = err.Error()
	}
	c.bus.publish(ev)
}

package domain

import "time"

// BookLevel is a single price+size entry on one side of an order book.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook is a full snapshot of bids and asks for one outcome. Like candles
// it is ephemeral and re-fetched on every outcome selection.
type OrderBook struct {
	OutcomeID string      `json:"outcome_id"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

// BestBid returns the highest bid price, or 0 for an empty bid side.
func (b OrderBook) BestBid() float64 {
	best := 0.0
	for _, l := range b.Bids {
		if l.Price > best {
			best = l.Price
		}
	}
	return best
}

// BestAsk returns the lowest ask price, or 0 for an empty ask side.
func (b OrderBook) BestAsk() float64 {
	best := 0.0
	for i, l := range b.Asks {
		if i == 0 || l.Price < best {
			best = l.Price
		}
	}
	return best
}

// MidPrice returns the midpoint of the best bid and ask, or 0 when either
// side is empty.
func (b OrderBook) MidPrice() float64 {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// Package domain defines the display records and view-level types shared by
// the backend client, the view-state controller, and the HTTP handlers. These
// are plain records: they are created from backend responses, rendered to the
// browser, and replaced wholesale on the next fetch. Nothing in this package
// owns or mutates them.
package domain

// Exchange identifies the upstream market data source.
type Exchange string

const (
	ExchangePolymarket Exchange = "polymarket"
	ExchangeKalshi     Exchange = "kalshi"
)

// Outcome is one possible resolution of a prediction market (e.g. "Yes"/"No"),
// with its own price series and order book keyed by ID.
type Outcome struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Price    float64  `json:"price"`
	Change24 *float64 `json:"change_24h,omitempty"` // nil when the backend omits it
}

// Market is a prediction market as displayed in the dashboard list.
type Market struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug,omitempty"`
	Exchange  Exchange  `json:"exchange"`
	Category  string    `json:"category,omitempty"`
	Volume    float64   `json:"volume"`
	Liquidity float64   `json:"liquidity"`
	Outcomes  []Outcome `json:"outcomes"`
}

// FirstOutcomeID returns the ID of the first outcome, or "" when the market
// has none.
func (m Market) FirstOutcomeID() string {
	if len(m.Outcomes) == 0 {
		return ""
	}
	return m.Outcomes[0].ID
}

// OutcomeByID returns the outcome with the given ID and whether it exists.
func (m Market) OutcomeByID(id string) (Outcome, bool) {
	for _, o := range m.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

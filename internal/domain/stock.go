package domain

import "time"

// StockQuote is a single equity quote as shown in the stocks panel.
type StockQuote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	Volume    float64   `json:"volume,omitempty"`
	Time      time.Time `json:"time"`
}

// IndexQuote is a market index level (e.g. S&P 500) for the indices strip.
type IndexQuote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Level     float64   `json:"level"`
	ChangePct float64   `json:"change_pct"`
	Time      time.Time `json:"time"`
}

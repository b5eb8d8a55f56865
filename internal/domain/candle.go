package domain

import "time"

// Candle is a single OHLCV bar for one outcome's price series. Candles are
// ephemeral: the chart panel re-fetches the full series on every outcome
// selection.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CandleInterval is the bar width requested from the backend (e.g. "1h").
type CandleInterval string

const (
	Interval1m      CandleInterval = "1m"
	Interval5m      CandleInterval = "5m"
	Interval1h      CandleInterval = "1h"
	Interval1d      CandleInterval = "1d"
	IntervalDefault                = Interval1h
)

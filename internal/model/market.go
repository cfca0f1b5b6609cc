package model

import (
	"math"
	"time"
)

// OHLCV represents a single candlestick bar. A missing price or volume is NaN.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// MissingField returns the name of the first absent price field, or "" when
// the bar carries open, high, low and close.
func (b OHLCV) MissingField() string {
	switch {
	case math.IsNaN(b.Open):
		return "open"
	case math.IsNaN(b.High):
		return "high"
	case math.IsNaN(b.Low):
		return "low"
	case math.IsNaN(b.Close):
		return "close"
	}
	return ""
}

// PriceSeries holds raw price data for one ticker, oldest bar first.
type PriceSeries struct {
	Symbol    string
	Source    string
	Bars      []OHLCV
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

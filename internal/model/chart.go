package model

import "time"

// EnrichedBar is a bar plus its derived moving average and category.
// SMA20 is meaningful only when SMAReady is true.
type EnrichedBar struct {
	OHLCV
	SMA20    float64
	SMAReady bool
	Category Category
}

// EnrichedSeries is the derived, read-only view of a PriceSeries.
type EnrichedSeries struct {
	Symbol     string
	Source     string
	Bars       []EnrichedBar
	MeanVolume float64
	FetchedAt  time.Time
}

// Len returns the number of bars.
func (s *EnrichedSeries) Len() int { return len(s.Bars) }

// Viewport is an inclusive time window. Start after End selects nothing.
type Viewport struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the viewport can never select a bar.
func (v Viewport) Empty() bool { return v.Start.After(v.End) }

// YRange is a padded y-axis range for a visible slice.
type YRange struct {
	Min float64
	Max float64
}

// ChartSummary condenses the latest state of an enriched series.
type ChartSummary struct {
	Symbol     string
	Source     string
	Bars       int
	LastTime   time.Time
	LastClose  float64
	LastSMA20  float64
	SMAReady   bool
	Category   Category
	MeanVolume float64
	High       float64
	Low        float64
	Position   float64 // 0.0 ~ 1.0 within [Low, High]
	UpdatedAt  time.Time
}

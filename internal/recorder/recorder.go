package recorder

import (
	"time"

	"CandleDash/internal/model"
)

// RefreshEvent records one chart rebuild.
type RefreshEvent struct {
	Symbol     string
	Source     string
	Trigger    model.RefreshTrigger
	Bars       int
	LastClose  float64
	LastSMA20  float64 // NaN when the SMA is not yet defined
	Category   model.Category
	MeanVolume float64
	Duration   time.Duration
	Error      string
}

// Recorder persists fetched bars, used as a fallback cache, and refresh history.
type Recorder interface {
	SaveBars(symbol, interval string, bars []model.OHLCV) error
	LoadBars(symbol, interval string) ([]model.OHLCV, error)
	RecordRefresh(evt *RefreshEvent) error
	Close() error
}

package chart

import (
	"math"
	"sort"

	"CandleDash/internal/calculator"
	"CandleDash/internal/model"
)

// Padding is the fractional headroom added below and above a visible range.
type Padding struct {
	Low  float64
	High float64
}

// DefaultPadding adds 1% on each side.
var DefaultPadding = Padding{Low: 0.01, High: 0.01}

// ComputeRange returns the padded y-axis range of the bars visible in vp.
// Lows, highs and every available SMA20 in the window bound the range.
//
// It returns ErrEmptyViewport when vp selects nothing and *InvalidRangeError
// when the window holds no finite prices.
func ComputeRange(series *model.EnrichedSeries, vp model.Viewport, pad Padding) (model.YRange, error) {
	lo, hi := visibleBounds(series, vp)
	if lo >= hi {
		return model.YRange{}, ErrEmptyViewport
	}

	rawMin := math.Inf(1)
	rawMax := math.Inf(-1)
	// NaN compares false, so absent values never move the bounds.
	for _, b := range series.Bars[lo:hi] {
		if b.Low < rawMin {
			rawMin = b.Low
		}
		if b.High > rawMax {
			rawMax = b.High
		}
		if b.SMAReady {
			if b.SMA20 < rawMin {
				rawMin = b.SMA20
			}
			if b.SMA20 > rawMax {
				rawMax = b.SMA20
			}
		}
	}

	yMin, yMax := calculator.PadRange(rawMin, rawMax, pad.Low, pad.High)
	if !finite(yMin) || !finite(yMax) || yMin > yMax {
		return model.YRange{}, &InvalidRangeError{Min: yMin, Max: yMax}
	}
	return model.YRange{Min: yMin, Max: yMax}, nil
}

// Visible returns the bars of series inside vp. The slice aliases series.
func Visible(series *model.EnrichedSeries, vp model.Viewport) []model.EnrichedBar {
	if series == nil {
		return nil
	}
	lo, hi := visibleBounds(series, vp)
	return series.Bars[lo:hi]
}

// FullViewport spans the whole series.
func FullViewport(series *model.EnrichedSeries) (model.Viewport, error) {
	if series == nil || len(series.Bars) == 0 {
		return model.Viewport{}, ErrEmptyViewport
	}
	return model.Viewport{
		Start: series.Bars[0].Time,
		End:   series.Bars[len(series.Bars)-1].Time,
	}, nil
}

// ViewportFromIndex converts an inclusive bar-index window into a Viewport.
// from and to are clamped independently to the valid index range; from > to
// after clamping yields an empty viewport.
func ViewportFromIndex(series *model.EnrichedSeries, from, to int) (model.Viewport, error) {
	if series == nil || len(series.Bars) == 0 {
		return model.Viewport{}, ErrEmptyViewport
	}
	last := len(series.Bars) - 1
	from = clampIndex(from, last)
	to = clampIndex(to, last)
	return model.Viewport{
		Start: series.Bars[from].Time,
		End:   series.Bars[to].Time,
	}, nil
}

func visibleBounds(series *model.EnrichedSeries, vp model.Viewport) (int, int) {
	if series == nil || vp.Empty() {
		return 0, 0
	}
	bars := series.Bars
	lo := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(vp.Start) })
	hi := sort.Search(len(bars), func(i int) bool { return bars[i].Time.After(vp.End) })
	if hi < lo {
		return lo, lo
	}
	return lo, hi
}

func clampIndex(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

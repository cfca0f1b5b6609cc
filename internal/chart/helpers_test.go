package chart

import (
	"time"

	"CandleDash/internal/model"
)

var day0 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time { return day0.AddDate(0, 0, i) }

// seriesFrom builds a daily series from close and volume columns, with
// high/low one unit around the close.
func seriesFrom(closes, volumes []float64) model.PriceSeries {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   day(i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: volumes[i],
		}
	}
	return model.PriceSeries{Symbol: "TEST", Source: "test", Bars: bars}
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ascending(n int, from float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)
	}
	return out
}

package chart

import (
	"fmt"

	"CandleDash/internal/calculator"
	"CandleDash/internal/model"
	"CandleDash/internal/strategy"
)

// SMAPeriod is the moving-average window used for enrichment.
const SMAPeriod = 20

// Enrich derives SMA20 and a category for every bar of series. The input is
// not modified; the result shares no slices with it. Volume must be finite:
// a NaN volume makes MeanVolume NaN and every classified bar Neutral, so
// callers map missing volume to zero first (see collector.Normalize).
func Enrich(series model.PriceSeries) (*model.EnrichedSeries, error) {
	bars := series.Bars
	if len(bars) == 0 {
		return nil, ErrInsufficientData
	}
	for i, b := range bars {
		if field := b.MissingField(); field != "" {
			return nil, &MissingFieldError{Index: i, Time: b.Time, Field: field}
		}
	}

	closes := calculator.ExtractCloses(bars)
	volumes := calculator.ExtractVolumes(bars)

	sma, ready, err := calculator.RollingSMA(closes, SMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("sma: %w", err)
	}
	meanVolume, err := calculator.Mean(volumes)
	if err != nil {
		return nil, fmt.Errorf("mean volume: %w", err)
	}
	categories, err := strategy.ClassifyAll(closes, sma, ready, volumes, meanVolume)
	if err != nil {
		return nil, err
	}

	out := make([]model.EnrichedBar, len(bars))
	for i, b := range bars {
		out[i] = model.EnrichedBar{
			OHLCV:    b,
			SMA20:    sma[i],
			SMAReady: ready[i],
			Category: categories[i],
		}
	}
	return &model.EnrichedSeries{
		Symbol:     series.Symbol,
		Source:     series.Source,
		Bars:       out,
		MeanVolume: meanVolume,
		FetchedAt:  series.FetchedAt,
	}, nil
}

// Unenriched lifts a raw series into an EnrichedSeries with every SMA absent,
// so it can be rescaled without enrichment.
func Unenriched(series model.PriceSeries) *model.EnrichedSeries {
	out := make([]model.EnrichedBar, len(series.Bars))
	for i, b := range series.Bars {
		out[i] = model.EnrichedBar{OHLCV: b, Category: model.CategoryUnclassified}
	}
	meanVolume, _ := calculator.Mean(calculator.ExtractVolumes(series.Bars))
	return &model.EnrichedSeries{
		Symbol:     series.Symbol,
		Source:     series.Source,
		Bars:       out,
		MeanVolume: meanVolume,
		FetchedAt:  series.FetchedAt,
	}
}

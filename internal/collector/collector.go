package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"CandleDash/internal/chart"
	"CandleDash/internal/model"
	"CandleDash/internal/recorder"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	DailyData  []model.OHLCV
	WeeklyData []model.OHLCV
	Err        error
	Calls      int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, _ int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DailyData, nil
}

func (m *MockFetcher) FetchWeeklyBars(_ context.Context, _ string, _ int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.WeeklyData != nil {
		return m.WeeklyData, nil
	}
	return AggregateWeekly(m.DailyData), nil
}

// Intervals supported by the collector.
const (
	IntervalDaily  = "1d"
	IntervalWeekly = "1wk"
)

// Collector orchestrates data fetching, caching and enrichment.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Days     int
	Interval string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, rec recorder.Recorder, days int, interval string) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if interval == "" {
		interval = IntervalDaily
	}
	return &Collector{Fetcher: fetcher, Recorder: rec, Days: days, Interval: interval}
}

// Collect fetches bars for symbol and enriches them. When the fetch fails,
// previously cached bars are used instead.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.EnrichedSeries, error) {
	series, err := c.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	es, err := chart.Enrich(series)
	if err != nil {
		return nil, fmt.Errorf("enrich %s: %w", symbol, err)
	}
	return es, nil
}

// Fetch returns the normalized raw series for symbol.
func (c *Collector) Fetch(ctx context.Context, symbol string) (model.PriceSeries, error) {
	source := c.Fetcher.Name()
	bars, err := c.fetch(ctx, symbol)
	if err != nil {
		cached, cacheErr := c.Recorder.LoadBars(symbol, c.Interval)
		if cacheErr != nil || len(cached) == 0 {
			if cacheErr == nil {
				cacheErr = errors.New("no cached bars")
			}
			return model.PriceSeries{}, fmt.Errorf("fetch %s: %w; cache fallback: %w", symbol, err, cacheErr)
		}
		log.Printf("[WARN] fetch %s from %s failed, using %d cached bars: %v", symbol, source, len(cached), err)
		bars = cached
		source += "(cache)"
	} else if err := c.Recorder.SaveBars(symbol, c.Interval, bars); err != nil {
		log.Printf("[WARN] cache bars for %s: %v", symbol, err)
	}

	return model.PriceSeries{
		Symbol:    symbol,
		Source:    source,
		Bars:      Normalize(bars),
		FetchedAt: time.Now(),
	}, nil
}

func (c *Collector) fetch(ctx context.Context, symbol string) ([]model.OHLCV, error) {
	if c.Interval == IntervalWeekly {
		weeks := c.Days / 7
		if weeks <= 0 {
			weeks = 52
		}
		return c.Fetcher.FetchWeeklyBars(ctx, symbol, weeks)
	}
	return c.Fetcher.FetchDailyBars(ctx, symbol, c.Days)
}

// Normalize returns bars sorted by time with duplicate timestamps collapsed
// to the last occurrence. A missing volume counts as zero. The input is not
// modified.
func Normalize(bars []model.OHLCV) []model.OHLCV {
	sorted := make([]model.OHLCV, len(bars))
	copy(sorted, bars)
	for i := range sorted {
		if math.IsNaN(sorted[i].Volume) {
			sorted[i].Volume = 0
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func unixUTC(ts int64) time.Time { return time.Unix(ts, 0).UTC() }

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

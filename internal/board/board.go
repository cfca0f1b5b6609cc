// Package board keeps the latest enriched series for every ticker shown on
// the dashboard.
package board

import (
	"errors"
	"sort"
	"sync"
	"time"

	"CandleDash/internal/calculator"
	"CandleDash/internal/model"
)

// ErrUnknownSymbol is returned for a ticker with no built chart.
var ErrUnknownSymbol = errors.New("no chart for symbol")

// Board is safe for concurrent use. Stored series are treated as read-only.
type Board struct {
	mu      sync.RWMutex
	charts  map[string]*model.EnrichedSeries
	updated map[string]time.Time
}

// New creates an empty board.
func New() *Board {
	return &Board{
		charts:  make(map[string]*model.EnrichedSeries),
		updated: make(map[string]time.Time),
	}
}

// Put stores series and reports whether the last bar's category differs from
// the previous snapshot's. The first snapshot for a symbol never counts as a
// change.
func (b *Board) Put(series *model.EnrichedSeries) (prev model.Category, changed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.charts[series.Symbol]
	b.charts[series.Symbol] = series
	b.updated[series.Symbol] = time.Now()
	if !ok || old.Len() == 0 || series.Len() == 0 {
		return "", false
	}
	prev = old.Bars[old.Len()-1].Category
	return prev, prev != series.Bars[series.Len()-1].Category
}

// Get returns the latest series for symbol.
func (b *Board) Get(symbol string) (*model.EnrichedSeries, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.charts[symbol]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	return s, nil
}

// Symbols lists the tickers with a built chart, sorted.
func (b *Board) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.charts))
	for s := range b.charts {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Summary condenses the latest series for symbol.
func (b *Board) Summary(symbol string) (*model.ChartSummary, error) {
	b.mu.RLock()
	s, ok := b.charts[symbol]
	updatedAt := b.updated[symbol]
	b.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownSymbol
	}
	return Summarize(s, updatedAt)
}

// Summarize builds a ChartSummary from series.
func Summarize(s *model.EnrichedSeries, updatedAt time.Time) (*model.ChartSummary, error) {
	if s.Len() == 0 {
		return nil, calculator.ErrNoData
	}
	raw := make([]model.OHLCV, s.Len())
	for i, b := range s.Bars {
		raw[i] = b.OHLCV
	}
	high, low, err := calculator.CalculateRange(raw, 0)
	if err != nil {
		return nil, err
	}
	last := s.Bars[s.Len()-1]
	pos, err := calculator.CalculatePosition(last.Close, high, low)
	if err != nil {
		return nil, err
	}
	return &model.ChartSummary{
		Symbol:     s.Symbol,
		Source:     s.Source,
		Bars:       s.Len(),
		LastTime:   last.Time,
		LastClose:  last.Close,
		LastSMA20:  last.SMA20,
		SMAReady:   last.SMAReady,
		Category:   last.Category,
		MeanVolume: s.MeanVolume,
		High:       high,
		Low:        low,
		Position:   pos,
		UpdatedAt:  updatedAt,
	}, nil
}

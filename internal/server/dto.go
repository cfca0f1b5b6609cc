package server

import (
	"math"
	"time"

	"CandleDash/internal/model"
)

// JSON has no NaN, so absent values travel as null.
func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type barResponse struct {
	Time     time.Time      `json:"time"`
	Open     *float64       `json:"open"`
	High     *float64       `json:"high"`
	Low      *float64       `json:"low"`
	Close    *float64       `json:"close"`
	Volume   *float64       `json:"volume"`
	SMA20    *float64       `json:"sma20"`
	Category model.Category `json:"category"`
}

type seriesResponse struct {
	Symbol     string        `json:"symbol"`
	Source     string        `json:"source"`
	MeanVolume *float64      `json:"mean_volume"`
	FetchedAt  time.Time     `json:"fetched_at"`
	Bars       []barResponse `json:"bars"`
}

func newSeriesResponse(s *model.EnrichedSeries, bars []model.EnrichedBar) *seriesResponse {
	out := &seriesResponse{
		Symbol:     s.Symbol,
		Source:     s.Source,
		MeanVolume: num(s.MeanVolume),
		FetchedAt:  s.FetchedAt,
		Bars:       make([]barResponse, len(bars)),
	}
	for i, b := range bars {
		out.Bars[i] = barResponse{
			Time:     b.Time,
			Open:     num(b.Open),
			High:     num(b.High),
			Low:      num(b.Low),
			Close:    num(b.Close),
			Volume:   num(b.Volume),
			Category: b.Category,
		}
		if b.SMAReady {
			out.Bars[i].SMA20 = num(b.SMA20)
		}
	}
	return out
}

type summaryResponse struct {
	Symbol     string         `json:"symbol"`
	Source     string         `json:"source"`
	Bars       int            `json:"bars"`
	LastTime   time.Time      `json:"last_time"`
	LastClose  *float64       `json:"last_close"`
	LastSMA20  *float64       `json:"last_sma20"`
	Category   model.Category `json:"category"`
	MeanVolume *float64       `json:"mean_volume"`
	High       *float64       `json:"high"`
	Low        *float64       `json:"low"`
	Position   *float64       `json:"position"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func newSummaryResponse(s *model.ChartSummary) *summaryResponse {
	out := &summaryResponse{
		Symbol:     s.Symbol,
		Source:     s.Source,
		Bars:       s.Bars,
		LastTime:   s.LastTime,
		LastClose:  num(s.LastClose),
		Category:   s.Category,
		MeanVolume: num(s.MeanVolume),
		High:       num(s.High),
		Low:        num(s.Low),
		Position:   num(s.Position),
		UpdatedAt:  s.UpdatedAt,
	}
	if s.SMAReady {
		out.LastSMA20 = num(s.LastSMA20)
	}
	return out
}

// rangeResponse answers both REST range queries and websocket viewport events.
// When Updated is false the range is the retained one, or null if none exists.
type rangeResponse struct {
	Type    string   `json:"type,omitempty"`
	Symbol  string   `json:"symbol"`
	Updated bool     `json:"updated"`
	YMin    *float64 `json:"y_min"`
	YMax    *float64 `json:"y_max"`
	Reason  string   `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

package chart

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"CandleDash/internal/model"
)

func tenBarSeries() *model.EnrichedSeries {
	bars := make([]model.OHLCV, 10)
	for i := range bars {
		bars[i] = model.OHLCV{
			Time:   day(i),
			Open:   100 + float64(i),
			High:   101 + float64(i),
			Low:    99 + float64(i),
			Close:  100 + float64(i),
			Volume: 1000,
		}
	}
	es, err := Enrich(model.PriceSeries{Symbol: "TEN", Bars: bars})
	if err != nil {
		panic(err)
	}
	return es
}

func approx(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func TestComputeRange_FullWindowNoSMA(t *testing.T) {
	es := tenBarSeries()
	r, err := ComputeRange(es, model.Viewport{Start: day(0), End: day(9)}, DefaultPadding)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(r.Min, 99*0.99) || !approx(r.Max, 110*1.01) {
		t.Errorf("expected {%v, %v}, got %+v", 99*0.99, 110*1.01, r)
	}
}

func TestComputeRange_OutsideSeries(t *testing.T) {
	es := tenBarSeries()
	tests := []model.Viewport{
		{Start: day(50), End: day(60)},
		{Start: day(-30), End: day(-1)},
		{Start: day(5), End: day(2)}, // inverted
	}
	for _, vp := range tests {
		if _, err := ComputeRange(es, vp, DefaultPadding); !errors.Is(err, ErrEmptyViewport) {
			t.Errorf("viewport %v..%v: expected ErrEmptyViewport, got %v", vp.Start, vp.End, err)
		}
	}
}

func TestComputeRange_PartialWindowInclusive(t *testing.T) {
	es := tenBarSeries()
	r, err := ComputeRange(es, model.Viewport{Start: day(3), End: day(5)}, Padding{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Min != 102 || r.Max != 106 {
		t.Errorf("expected {102, 106}, got %+v", r)
	}

	// Bounds between bars select the bars strictly inside.
	r, err = ComputeRange(es, model.Viewport{Start: day(3).Add(time.Hour), End: day(5).Add(-time.Hour)}, Padding{})
	if err != nil {
		t.Fatal(err)
	}
	if r.Min != 103 || r.Max != 105 {
		t.Errorf("expected {103, 105}, got %+v", r)
	}
}

func TestComputeRange_IncludesSMA(t *testing.T) {
	// A sharp drop keeps SMA20 above every visible high.
	closes := append(constant(20, 200), constant(5, 100)...)
	es, err := Enrich(seriesFrom(closes, constant(25, 1)))
	if err != nil {
		t.Fatal(err)
	}
	r, err := ComputeRange(es, model.Viewport{Start: day(20), End: day(24)}, Padding{})
	if err != nil {
		t.Fatal(err)
	}
	// SMA at day20 = (19*200 + 100)/20 = 195
	if r.Max != 195 {
		t.Errorf("expected max 195 from SMA, got %v", r.Max)
	}
	if r.Min != 99 {
		t.Errorf("expected min 99, got %v", r.Min)
	}
}

func TestComputeRange_Degenerate(t *testing.T) {
	raw := model.PriceSeries{Bars: []model.OHLCV{
		{Time: day(0), Open: 1, High: math.NaN(), Low: math.NaN(), Close: 1},
		{Time: day(1), Open: 1, High: math.NaN(), Low: math.NaN(), Close: 1},
	}}
	_, err := ComputeRange(Unenriched(raw), model.Viewport{Start: day(0), End: day(1)}, DefaultPadding)
	var ire *InvalidRangeError
	if !errors.As(err, &ire) {
		t.Fatalf("expected InvalidRangeError, got %v", err)
	}
	if !Retainable(err) {
		t.Error("invalid range should be retainable")
	}
}

func TestComputeRange_Idempotent(t *testing.T) {
	es, err := Enrich(seriesFrom(ascending(60, 20), ascending(60, 100)))
	if err != nil {
		t.Fatal(err)
	}
	vp := model.Viewport{Start: day(10), End: day(45)}
	a, errA := ComputeRange(es, vp, DefaultPadding)
	b, errB := ComputeRange(es, vp, DefaultPadding)
	if errA != nil || errB != nil {
		t.Fatal(errA, errB)
	}
	if a != b {
		t.Errorf("expected identical ranges, got %+v and %+v", a, b)
	}
}

func TestComputeRange_Concurrent(t *testing.T) {
	es := tenBarSeries()
	want, err := ComputeRange(es, model.Viewport{Start: day(0), End: day(9)}, DefaultPadding)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ComputeRange(es, model.Viewport{Start: day(0), End: day(9)}, DefaultPadding)
			if err != nil || got != want {
				t.Errorf("concurrent rescale: got %+v, %v", got, err)
			}
		}()
	}
	wg.Wait()
}

func TestViewportFromIndex_ClampsIndependently(t *testing.T) {
	es := tenBarSeries()
	tests := []struct {
		from, to   int
		start, end time.Time
	}{
		{0, 9, day(0), day(9)},
		{-5, 4, day(0), day(4)},
		{3, 99, day(3), day(9)},
		{-1, 100, day(0), day(9)},
	}
	for _, tt := range tests {
		vp, err := ViewportFromIndex(es, tt.from, tt.to)
		if err != nil {
			t.Fatal(err)
		}
		if !vp.Start.Equal(tt.start) || !vp.End.Equal(tt.end) {
			t.Errorf("[%d, %d]: expected %v..%v, got %v..%v", tt.from, tt.to, tt.start, tt.end, vp.Start, vp.End)
		}
	}

	vp, err := ViewportFromIndex(es, 8, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ComputeRange(es, vp, DefaultPadding); !errors.Is(err, ErrEmptyViewport) {
		t.Errorf("reversed indices: expected ErrEmptyViewport, got %v", err)
	}

	if _, err := ViewportFromIndex(&model.EnrichedSeries{}, 0, 1); !errors.Is(err, ErrEmptyViewport) {
		t.Errorf("empty series: expected ErrEmptyViewport, got %v", err)
	}
}

func TestVisible(t *testing.T) {
	es := tenBarSeries()
	got := Visible(es, model.Viewport{Start: day(2), End: day(4)})
	if len(got) != 3 || !got[0].Time.Equal(day(2)) {
		t.Errorf("expected 3 bars from day 2, got %d", len(got))
	}
}

func TestVisible_NilSeries(t *testing.T) {
	if got := Visible(nil, model.Viewport{Start: day(0), End: day(9)}); got != nil {
		t.Errorf("expected nil for nil series, got %d bars", len(got))
	}
}

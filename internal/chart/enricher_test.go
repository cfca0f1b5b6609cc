package chart

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"CandleDash/internal/model"
)

func TestEnrich_Empty(t *testing.T) {
	if _, err := Enrich(model.PriceSeries{}); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEnrich_MissingField(t *testing.T) {
	s := seriesFrom(ascending(5, 100), constant(5, 1000))
	s.Bars[3].Low = math.NaN()

	_, err := Enrich(s)
	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if mfe.Index != 3 || mfe.Field != "low" {
		t.Errorf("expected index 3 field low, got %d %s", mfe.Index, mfe.Field)
	}
}

func TestEnrich_ShortSeriesUnclassified(t *testing.T) {
	for n := 1; n < SMAPeriod; n++ {
		es, err := Enrich(seriesFrom(ascending(n, 50), ascending(n, 10)))
		if err != nil {
			t.Fatal(err)
		}
		if es.Len() != n {
			t.Fatalf("n=%d: expected %d bars, got %d", n, n, es.Len())
		}
		for i, b := range es.Bars {
			if b.SMAReady {
				t.Errorf("n=%d bar %d: expected SMA absent", n, i)
			}
			if b.Category != model.CategoryUnclassified {
				t.Errorf("n=%d bar %d: expected Unclassified, got %s", n, i, b.Category)
			}
		}
	}
}

func TestEnrich_SMAMatchesTrailingMean(t *testing.T) {
	closes := []float64{
		101.3, 99.8, 102.4, 98.1, 97.6, 103.9, 104.2, 100.0, 99.1, 105.5,
		106.7, 101.1, 98.8, 97.2, 99.9, 103.3, 108.0, 110.4, 107.7, 104.6,
		102.2, 99.5, 101.8, 111.3, 109.9, 106.1, 104.4, 103.0,
	}
	es, err := Enrich(seriesFrom(closes, constant(len(closes), 1)))
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range es.Bars {
		if i < SMAPeriod-1 {
			if b.SMAReady {
				t.Errorf("bar %d: expected SMA absent", i)
			}
			continue
		}
		sum := 0.0
		for j := i - 19; j <= i; j++ {
			sum += closes[j]
		}
		if !b.SMAReady || math.Abs(b.SMA20-sum/20) > 1e-9 {
			t.Errorf("bar %d: expected SMA %.9f, got %.9f (ready=%v)", i, sum/20, b.SMA20, b.SMAReady)
		}
	}
}

func TestEnrich_AscendingConstantVolumeIsNeutral(t *testing.T) {
	es, err := Enrich(seriesFrom(ascending(25, 100), constant(25, 1000)))
	if err != nil {
		t.Fatal(err)
	}
	if es.MeanVolume != 1000 {
		t.Fatalf("expected mean volume 1000, got %v", es.MeanVolume)
	}
	for i := SMAPeriod - 1; i < 25; i++ {
		if es.Bars[i].Category != model.CategoryNeutral {
			t.Errorf("bar %d: expected Neutral, got %s", i, es.Bars[i].Category)
		}
	}
}

func TestEnrich_CategoryRule(t *testing.T) {
	closes := ascending(30, 100)
	closes[22] = 50  // well below SMA
	closes[25] = 200 // well above SMA
	volumes := constant(30, 1000)
	volumes[22] = 5000
	volumes[25] = 5000
	volumes[27] = 5000 // ascending close, above SMA

	es, err := Enrich(seriesFrom(closes, volumes))
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range es.Bars {
		if !b.SMAReady {
			continue
		}
		var want model.Category
		switch {
		case b.Close > b.SMA20 && b.Volume > es.MeanVolume:
			want = model.CategoryBullish
		case b.Close <= b.SMA20 && b.Volume > es.MeanVolume:
			want = model.CategoryBearish
		default:
			want = model.CategoryNeutral
		}
		if b.Category != want {
			t.Errorf("bar %d: expected %s, got %s", i, want, b.Category)
		}
	}
	if es.Bars[22].Category != model.CategoryBearish {
		t.Errorf("bar 22: expected Bearish, got %s", es.Bars[22].Category)
	}
	if es.Bars[25].Category != model.CategoryBullish {
		t.Errorf("bar 25: expected Bullish, got %s", es.Bars[25].Category)
	}
}

func TestEnrich_DoesNotMutateAndIsIdempotent(t *testing.T) {
	s := seriesFrom(ascending(40, 10), ascending(40, 1))
	before := append([]model.OHLCV(nil), s.Bars...)

	a, err := Enrich(s)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Enrich(s)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.Bars, before) {
		t.Error("input bars were modified")
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated enrichment differs")
	}
	for i := range s.Bars {
		if !a.Bars[i].Time.Equal(s.Bars[i].Time) {
			t.Fatalf("bar %d: order changed", i)
		}
	}
}

func TestUnenriched(t *testing.T) {
	es := Unenriched(seriesFrom(ascending(30, 10), constant(30, 7)))
	if es.Len() != 30 || es.MeanVolume != 7 {
		t.Fatalf("unexpected series: len=%d mean=%v", es.Len(), es.MeanVolume)
	}
	for i, b := range es.Bars {
		if b.SMAReady || b.Category != model.CategoryUnclassified {
			t.Errorf("bar %d: expected raw bar, got ready=%v category=%s", i, b.SMAReady, b.Category)
		}
	}
}

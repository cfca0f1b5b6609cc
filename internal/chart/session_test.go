package chart

import (
	"errors"
	"testing"

	"CandleDash/internal/model"
)

func TestSession_InitialRangeCoversSeries(t *testing.T) {
	s := NewSession(tenBarSeries(), DefaultPadding)
	r, ok := s.Range()
	if !ok {
		t.Fatal("expected an initial range")
	}
	if !approx(r.Min, 99*0.99) || !approx(r.Max, 110*1.01) {
		t.Errorf("unexpected initial range %+v", r)
	}
	if s.State() != StateIdle {
		t.Errorf("expected Idle, got %s", s.State())
	}
}

func TestSession_TransitionsAndRetention(t *testing.T) {
	s := NewSession(tenBarSeries(), Padding{})

	var seen []State
	s.OnTransition(func(_, to State) { seen = append(seen, to) })

	r, updated, err := s.Apply(model.Viewport{Start: day(2), End: day(4)})
	if err != nil || !updated {
		t.Fatalf("expected update, got updated=%v err=%v", updated, err)
	}
	if r.Min != 101 || r.Max != 105 {
		t.Errorf("unexpected range %+v", r)
	}
	want := []State{StateViewportChanged, StateRescaling, StateIdle}
	if len(seen) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}

	// Panning off the data keeps the previous range.
	kept, updated, err := s.Apply(model.Viewport{Start: day(50), End: day(60)})
	if !errors.Is(err, ErrEmptyViewport) {
		t.Fatalf("expected ErrEmptyViewport, got %v", err)
	}
	if updated || kept != r {
		t.Errorf("expected retained range %+v, got %+v (updated=%v)", r, kept, updated)
	}
	if cur, _ := s.Range(); cur != r {
		t.Errorf("range changed after empty viewport: %+v", cur)
	}
	if s.State() != StateIdle {
		t.Errorf("expected Idle after failed rescale, got %s", s.State())
	}
}

func TestSession_ResetAndIndex(t *testing.T) {
	s := NewSession(tenBarSeries(), Padding{})
	if _, _, err := s.ApplyIndex(-3, 1); err != nil {
		t.Fatal(err)
	}
	r, _ := s.Range()
	if r.Min != 99 || r.Max != 102 {
		t.Errorf("index window: unexpected range %+v", r)
	}
	r, updated, err := s.Reset()
	if err != nil || !updated {
		t.Fatalf("reset: updated=%v err=%v", updated, err)
	}
	if r.Min != 99 || r.Max != 110 {
		t.Errorf("reset: unexpected range %+v", r)
	}
}

func TestSession_ReplaceRescalesCurrentViewport(t *testing.T) {
	s := NewSession(tenBarSeries(), Padding{})
	if _, _, err := s.Apply(model.Viewport{Start: day(0), End: day(1)}); err != nil {
		t.Fatal(err)
	}

	shifted := tenBarSeries()
	for i := range shifted.Bars {
		shifted.Bars[i].Low += 10
		shifted.Bars[i].High += 10
	}
	r, updated, err := s.Replace(shifted)
	if err != nil || !updated {
		t.Fatalf("replace: updated=%v err=%v", updated, err)
	}
	if r.Min != 109 || r.Max != 112 {
		t.Errorf("replace: unexpected range %+v", r)
	}
}

func TestSession_EmptySeries(t *testing.T) {
	s := NewSession(&model.EnrichedSeries{}, DefaultPadding)
	if _, ok := s.Range(); ok {
		t.Error("expected no range for empty series")
	}
	if _, updated, err := s.Reset(); updated || !errors.Is(err, ErrEmptyViewport) {
		t.Errorf("reset on empty: updated=%v err=%v", updated, err)
	}
}

func TestSession_ReplaceAfterResetFollowsNewBars(t *testing.T) {
	s := NewSession(tenBarSeries(), Padding{})
	if _, _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}

	grown := tenBarSeries()
	grown.Bars = append(grown.Bars, model.EnrichedBar{
		OHLCV:    model.OHLCV{Time: day(10), Open: 200, High: 500, Low: 150, Close: 200, Volume: 1000},
		Category: model.CategoryUnclassified,
	})
	r, updated, err := s.Replace(grown)
	if err != nil || !updated {
		t.Fatalf("replace: updated=%v err=%v", updated, err)
	}
	if r.Max != 500 {
		t.Errorf("All view should include the appended bar, got max %v", r.Max)
	}
	if !s.Viewport().End.Equal(day(10)) {
		t.Errorf("expected viewport to end on the new bar, got %v", s.Viewport().End)
	}

	// An explicit viewport stops following the series.
	if _, _, err := s.Apply(model.Viewport{Start: day(0), End: day(1)}); err != nil {
		t.Fatal(err)
	}
	r, _, _ = s.Replace(grown)
	if r.Max != 102 {
		t.Errorf("explicit viewport should stay pinned, got max %v", r.Max)
	}
}

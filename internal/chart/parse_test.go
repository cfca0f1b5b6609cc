package chart

import (
	"testing"
	"time"
)

func TestParseViewport(t *testing.T) {
	vp, err := ParseViewport("2023-01-01", "2023-01-09")
	if err != nil {
		t.Fatal(err)
	}
	if !vp.Start.Equal(day(0)) {
		t.Errorf("unexpected start %v", vp.Start)
	}
	if !vp.End.Equal(day(9).Add(-time.Nanosecond)) {
		t.Errorf("date-only end should cover the day, got %v", vp.End)
	}

	vp, err = ParseViewport("2023-01-01T12:00:00Z", "2023-01-02T12:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !vp.End.Equal(day(1).Add(12 * time.Hour)) {
		t.Errorf("unexpected RFC 3339 end %v", vp.End)
	}

	vp, err = ParseViewport("", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ComputeRange(tenBarSeries(), vp, DefaultPadding); err != nil {
		t.Errorf("open viewport should cover the series: %v", err)
	}

	if _, err := ParseViewport("yesterday", ""); err == nil {
		t.Error("expected parse error")
	}
}

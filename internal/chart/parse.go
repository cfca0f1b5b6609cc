package chart

import (
	"fmt"
	"time"

	"CandleDash/internal/model"
)

const dateLayout = "2006-01-02"

// ParseViewport parses viewport bounds given as dates (2006-01-02) or RFC 3339
// timestamps. A date-only end covers that whole day. An empty bound is open.
func ParseViewport(start, end string) (model.Viewport, error) {
	vp := model.Viewport{
		Start: time.Time{},
		End:   time.Unix(1<<62, 0).UTC(),
	}
	if start != "" {
		t, _, err := parseBound(start)
		if err != nil {
			return model.Viewport{}, fmt.Errorf("start: %w", err)
		}
		vp.Start = t
	}
	if end != "" {
		t, dateOnly, err := parseBound(end)
		if err != nil {
			return model.Viewport{}, fmt.Errorf("end: %w", err)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		vp.End = t
	}
	return vp, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid time %q: want %s or RFC 3339", s, dateLayout)
	}
	return t, false, nil
}

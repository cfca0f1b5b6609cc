package chart

import (
	"errors"
	"fmt"
	"time"
)

// ErrInsufficientData is returned by Enrich for an empty series.
var ErrInsufficientData = errors.New("insufficient data: series is empty")

// ErrEmptyViewport signals that a viewport selects no bars. Like io.EOF it is
// an expected outcome, not a fault: callers keep their previous range.
var ErrEmptyViewport = errors.New("no bars in viewport")

// MissingFieldError reports a bar without one of its required price fields.
type MissingFieldError struct {
	Index int
	Time  time.Time
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("bar %d (%s) is missing %s", e.Index, e.Time.Format("2006-01-02"), e.Field)
}

// InvalidRangeError reports a rescale that produced no finite, ordered range.
type InvalidRangeError struct {
	Min float64
	Max float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid y-range [%v, %v]", e.Min, e.Max)
}

// Retainable reports whether err is a rescale outcome after which the caller
// should simply keep its previous y-axis range.
func Retainable(err error) bool {
	if errors.Is(err, ErrEmptyViewport) {
		return true
	}
	var ire *InvalidRangeError
	return errors.As(err, &ire)
}

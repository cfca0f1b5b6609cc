package chart

import (
	"sync"

	"CandleDash/internal/model"
)

// State is the rescale state of a viewport session.
type State string

const (
	StateIdle            State = "IDLE"
	StateViewportChanged State = "VIEWPORT_CHANGED"
	StateRescaling       State = "RESCALING"
)

// Session tracks one interactive chart: its series snapshot, the current
// viewport and the last good y-range. A failed rescale leaves the last good
// range in place.
type Session struct {
	mu           sync.Mutex
	series       *model.EnrichedSeries
	pad          Padding
	state        State
	viewport     model.Viewport
	current      model.YRange
	hasRange     bool
	full         bool // viewport follows the whole series
	onTransition func(from, to State)
}

// NewSession creates an idle session over series. The initial range covers
// the full series when it can be computed.
func NewSession(series *model.EnrichedSeries, pad Padding) *Session {
	s := &Session{series: series, pad: pad, state: StateIdle}
	s.Reset()
	return s
}

// OnTransition registers a hook called on every state change.
func (s *Session) OnTransition(fn func(from, to State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTransition = fn
}

// Apply rescales to vp. It returns the range now in effect and whether it
// changed. On ErrEmptyViewport or *InvalidRangeError the returned range is the
// retained one.
func (s *Session) Apply(vp model.Viewport) (model.YRange, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = false
	return s.rescaleLocked(vp)
}

// ApplyIndex rescales to an inclusive bar-index window.
func (s *Session) ApplyIndex(from, to int) (model.YRange, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = false
	vp, err := ViewportFromIndex(s.series, from, to)
	if err != nil {
		return s.current, false, err
	}
	return s.rescaleLocked(vp)
}

// Reset rescales to the full series, the "All" view.
func (s *Session) Reset() (model.YRange, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = true
	vp, err := FullViewport(s.series)
	if err != nil {
		return s.current, false, err
	}
	return s.rescaleLocked(vp)
}

// Replace swaps in a refreshed series and rescales the current viewport.
// After Reset the viewport is widened to the new series' full span.
func (s *Session) Replace(series *model.EnrichedSeries) (model.YRange, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = series
	vp := s.viewport
	if s.full {
		full, err := FullViewport(series)
		if err != nil {
			return s.current, false, err
		}
		vp = full
	}
	return s.rescaleLocked(vp)
}

// Range returns the range in effect, if any has been computed.
func (s *Session) Range() (model.YRange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasRange
}

// Viewport returns the last requested viewport.
func (s *Session) Viewport() model.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// State returns the current state; outside a call it is always StateIdle.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) rescaleLocked(vp model.Viewport) (model.YRange, bool, error) {
	s.transition(StateViewportChanged)
	s.viewport = vp

	s.transition(StateRescaling)
	r, err := ComputeRange(s.series, vp, s.pad)
	s.transition(StateIdle)
	if err != nil {
		return s.current, false, err
	}
	s.current = r
	s.hasRange = true
	return r, true, nil
}

func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}

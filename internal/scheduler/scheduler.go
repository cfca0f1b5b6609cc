package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"CandleDash/internal/board"
	"CandleDash/internal/chart"
	"CandleDash/internal/collector"
	"CandleDash/internal/metrics"
	"CandleDash/internal/model"
	"CandleDash/internal/notifier"
	"CandleDash/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the chart refresh job and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Board     *board.Board
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Symbols   []string
	Padding   chart.Padding
	Ctx       context.Context

	mu        sync.Mutex
	listeners []func(*model.EnrichedSeries)
	running   sync.Mutex
}

// ErrRefreshRunning is returned by RefreshAll while another refresh is in progress.
var ErrRefreshRunning = errors.New("refresh already running")

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, b *board.Board, n notifier.Notifier, rec recorder.Recorder, m *metrics.Metrics, symbols []string) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Collector: col,
		Board:     b,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Symbols:   symbols,
		Padding:   chart.DefaultPadding,
		Ctx:       ctx,
	}
}

// RegisterAll registers the periodic refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	job := func() {
		if _, err := s.RefreshAll(model.TriggerSchedule); err != nil {
			log.Printf("[WARN] scheduled refresh skipped: %v", err)
		}
	}
	if _, err := s.Cron.AddFunc(refreshCron, job); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// OnRefresh registers fn to receive every successfully rebuilt chart.
func (s *Scheduler) OnRefresh(fn func(*model.EnrichedSeries)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// RefreshAll rebuilds every configured chart and returns how many succeeded.
// Only one RefreshAll runs at a time; a concurrent call returns
// ErrRefreshRunning without touching the board.
func (s *Scheduler) RefreshAll(trigger model.RefreshTrigger) (int, error) {
	if !s.running.TryLock() {
		return 0, ErrRefreshRunning
	}
	defer s.running.Unlock()

	log.Printf("[INFO] refreshing %d charts (%s)", len(s.Symbols), trigger)
	ok := 0
	for _, sym := range s.Symbols {
		if s.Ctx.Err() != nil {
			break
		}
		if err := s.Refresh(sym, trigger); err != nil {
			log.Printf("[ERROR] refresh %s: %v", sym, err)
			continue
		}
		ok++
	}
	return ok, nil
}

// Refresh rebuilds one chart. On failure the board keeps its previous snapshot.
func (s *Scheduler) Refresh(symbol string, trigger model.RefreshTrigger) error {
	start := time.Now()
	es, err := s.Collector.Collect(s.Ctx, symbol)
	elapsed := time.Since(start)
	s.Metrics.RefreshDuration.Observe(elapsed.Seconds())

	if err != nil {
		s.Metrics.RefreshTotal.WithLabelValues(symbol, "error").Inc()
		s.record(&recorder.RefreshEvent{
			Symbol: symbol, Source: s.Collector.Fetcher.Name(), Trigger: trigger,
			LastClose: math.NaN(), LastSMA20: math.NaN(), MeanVolume: math.NaN(),
			Duration: elapsed, Error: err.Error(),
		})
		if _, boardErr := s.Board.Get(symbol); errors.Is(boardErr, board.ErrUnknownSymbol) {
			s.trySend(notifier.FormatRefreshFailure(symbol, err))
		}
		return err
	}

	s.Metrics.RefreshTotal.WithLabelValues(symbol, "ok").Inc()
	s.Metrics.ChartBars.WithLabelValues(symbol).Set(float64(es.Len()))

	prev, changed := s.Board.Put(es)
	last := es.Bars[es.Len()-1]
	sma := math.NaN()
	if last.SMAReady {
		sma = last.SMA20
	}
	s.record(&recorder.RefreshEvent{
		Symbol: symbol, Source: es.Source, Trigger: trigger, Bars: es.Len(),
		LastClose: last.Close, LastSMA20: sma, Category: last.Category,
		MeanVolume: es.MeanVolume, Duration: elapsed,
	})

	if changed {
		s.Metrics.CategoryChanges.WithLabelValues(symbol, string(last.Category)).Inc()
		if last.Category.Directional() {
			if sum, err := s.Board.Summary(symbol); err == nil {
				s.trySend(notifier.FormatCategoryAlert(sum, prev))
			}
		}
	}

	s.mu.Lock()
	listeners := append([]func(*model.EnrichedSeries){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(es)
	}
	return nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/tickers":
		return notifier.FormatTickers(s.Board.Symbols(), time.Now())
	case "/chart":
		if len(fields) != 2 {
			return "usage: /chart SYMBOL"
		}
		sum, err := s.Board.Summary(strings.ToUpper(fields[1]))
		if err != nil {
			return fmt.Sprintf("%s: %v", fields[1], err)
		}
		return notifier.FormatChartSummary(sum)
	case "/range":
		if len(fields) != 4 {
			return "usage: /range SYMBOL START END"
		}
		return s.rangeReply(strings.ToUpper(fields[1]), fields[2], fields[3])
	case "/refresh":
		n, err := s.RefreshAll(model.TriggerManual)
		if err != nil {
			return err.Error()
		}
		return fmt.Sprintf("refreshed %d/%d charts", n, len(s.Symbols))
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /tickers\n• /chart SYMBOL\n• /range SYMBOL START END\n• /refresh"

func (s *Scheduler) rangeReply(symbol, start, end string) string {
	es, err := s.Board.Get(symbol)
	if err != nil {
		return fmt.Sprintf("%s: %v", symbol, err)
	}
	vp, err := chart.ParseViewport(start, end)
	if err != nil {
		return err.Error()
	}
	r, err := chart.ComputeRange(es, vp, s.Padding)
	switch {
	case errors.Is(err, chart.ErrEmptyViewport):
		s.Metrics.ObserveRescale(metrics.RescaleEmpty)
		return fmt.Sprintf("%s: no bars between %s and %s", symbol, start, end)
	case err != nil:
		s.Metrics.ObserveRescale(metrics.RescaleInvalid)
		return fmt.Sprintf("%s: %v", symbol, err)
	}
	s.Metrics.ObserveRescale(metrics.RescaleOK)
	return notifier.FormatRange(symbol, vp, r)
}

func (s *Scheduler) record(evt *recorder.RefreshEvent) {
	if err := s.Recorder.RecordRefresh(evt); err != nil {
		log.Printf("[ERROR] record refresh: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

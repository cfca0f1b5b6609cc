package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rescale outcomes.
const (
	RescaleOK      = "ok"
	RescaleEmpty   = "empty"
	RescaleInvalid = "invalid"
)

// Metrics holds the Prometheus metrics for the dashboard host.
type Metrics struct {
	registry *prometheus.Registry

	RefreshTotal    *prometheus.CounterVec // labels: symbol, result
	RefreshDuration prometheus.Histogram
	RescaleTotal    *prometheus.CounterVec // labels: result
	CategoryChanges *prometheus.CounterVec // labels: symbol, category
	Sessions        prometheus.Gauge
	ChartBars       *prometheus.GaugeVec // labels: symbol
}

// NewMetrics creates the metrics on their own registry, so several instances
// can coexist in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candledash_refresh_total",
			Help: "Chart rebuilds by symbol and result",
		}, []string{"symbol", "result"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "candledash_refresh_duration_seconds",
			Help:    "Time to fetch and enrich one chart",
			Buckets: prometheus.DefBuckets,
		}),
		RescaleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candledash_rescale_total",
			Help: "Viewport rescales by outcome",
		}, []string{"result"}),
		CategoryChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "candledash_category_changes_total",
			Help: "Changes of the latest bar category",
		}, []string{"symbol", "category"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "candledash_ws_sessions",
			Help: "Open websocket viewport sessions",
		}),
		ChartBars: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "candledash_chart_bars",
			Help: "Bars in the latest chart snapshot",
		}, []string{"symbol"}),
	}
	m.registry.MustRegister(
		m.RefreshTotal,
		m.RefreshDuration,
		m.RescaleTotal,
		m.CategoryChanges,
		m.Sessions,
		m.ChartBars,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRescale counts one rescale outcome.
func (m *Metrics) ObserveRescale(result string) {
	m.RescaleTotal.WithLabelValues(result).Inc()
}

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Run metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// File metrics
	FilesTotal    *prometheus.CounterVec
	ParseDuration prometheus.Histogram

	// Diagnostic metrics
	DiagnosticsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protocheck_runs_total",
				Help: "Total number of check runs by outcome",
			},
			[]string{"outcome"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "protocheck_run_duration_seconds",
				Help:    "Check run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protocheck_files_total",
				Help: "Total number of files checked by status",
			},
			[]string{"status"},
		),
		ParseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "protocheck_parse_duration_seconds",
				Help:    "Time spent parsing a single file",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protocheck_diagnostics_total",
				Help: "Total number of diagnostics by kind and severity",
			},
			[]string{"kind", "severity"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protocheck_parse_cache_hits_total",
				Help: "Total number of parse cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "protocheck_parse_cache_misses_total",
				Help: "Total number of parse cache misses",
			},
		),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.FilesTotal,
		m.ParseDuration,
		m.DiagnosticsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// ObserveRun records a finished run
func (m *Metrics) ObserveRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// ObserveFile records a file with its status (ok, failed, skipped,
// parse_error)
func (m *Metrics) ObserveFile(status string) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(status).Inc()
}

// ObserveParse records how long a parse took
func (m *Metrics) ObserveParse(duration time.Duration) {
	if m == nil {
		return
	}
	m.ParseDuration.Observe(duration.Seconds())
}

// ObserveDiagnostic records one emitted diagnostic
func (m *Metrics) ObserveDiagnostic(kind, severity string) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(kind, severity).Inc()
}

// CacheHit records a parse cache hit
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss records a parse cache miss
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

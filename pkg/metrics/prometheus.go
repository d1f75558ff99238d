package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketwatch"

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	refreshSymbols  *prometheus.CounterVec
	refreshRuns     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API calls by module and outcome",
		}, []string{"module", "status"}),
		upstreamLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"module"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Symbol cache lookups by result (hit, miss, bypass)",
		}, []string{"result"}),
		refreshSymbols: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_symbols_total",
			Help:      "Per-symbol outcomes of scheduled refreshes",
		}, []string{"outcome"}),
		refreshRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Scheduled refresh runs by outcome",
		}, []string{"outcome"}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors encountered",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of operations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (r *Recorder) RecordUpstreamCall(module string, ok bool, seconds float64) {
	status := "ok"
	if !ok {
		status = "error"
	}
	r.upstreamCalls.WithLabelValues(module, status).Inc()
	r.upstreamLatency.WithLabelValues(module).Observe(seconds)
}

func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordRefreshSymbol(outcome string) {
	r.refreshSymbols.WithLabelValues(outcome).Inc()
}

func (r *Recorder) RecordRefreshRun(outcome string) {
	r.refreshRuns.WithLabelValues(outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordUpstreamCall(string, bool, float64) {}
func (Nop) RecordCacheLookup(string)                 {}
func (Nop) RecordRefreshSymbol(string)               {}
func (Nop) RecordRefreshRun(string)                  {}
func (Nop) RecordError(string)                       {}
func (Nop) RecordLatency(string, float64)            {}

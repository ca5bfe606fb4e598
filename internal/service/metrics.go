package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the search pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Searches       *prometheus.CounterVec
	Rows           *prometheus.CounterVec
	Translations   *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	SearchDuration prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trialfinder_searches_total",
			Help: "Searches run, by outcome.",
		}, []string{"outcome"}),
		Rows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trialfinder_result_rows_total",
			Help: "Trial records returned, by registry.",
		}, []string{"source"}),
		Translations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trialfinder_translations_total",
			Help: "Translator calls, by direction and outcome.",
		}, []string{"direction", "outcome"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trialfinder_upstream_errors_total",
			Help: "Failed upstream calls, by service.",
		}, []string{"service"}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trialfinder_search_duration_seconds",
			Help:    "End-to-end search latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
}

func (m *Metrics) search(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(seconds)
}

func (m *Metrics) rows(source string, n int) {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) translation(dir Direction, outcome string) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(string(dir), outcome).Inc()
}

func (m *Metrics) upstreamError(service string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(service).Inc()
}

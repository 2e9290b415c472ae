// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the scanner's Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal *prometheus.CounterVec
	StageFailures *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	ModelCalls    *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "splscan"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "analyses_total",
			Help:      "Total number of token analyses by outcome",
		}, []string{"outcome"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "stage_failures_total",
			Help:      "Total number of analyses that failed in each pipeline stage",
		}, []string{"stage"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scanner",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "model_calls_total",
			Help:      "Total number of chat completion calls by backend and result",
		}, []string{"backend", "result"}),
	}
}

// Handler returns the HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordStage records how long a stage took
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordFailure records an analysis that ended in the given stage
func (m *Metrics) RecordFailure(stage string) {
	if m == nil {
		return
	}
	m.StageFailures.WithLabelValues(stage).Inc()
	m.AnalysesTotal.WithLabelValues("failed").Inc()
}

// RecordSuccess records an assembled analysis
func (m *Metrics) RecordSuccess() {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues("assembled").Inc()
}

// RecordModelCall records one chat completion call
func (m *Metrics) RecordModelCall(backend string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ModelCalls.WithLabelValues(backend, result).Inc()
}

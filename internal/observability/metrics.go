package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	analysisOutcomesTotal *prometheus.CounterVec
	versionsCreatedTotal  *prometheus.CounterVec
	completionTransitions *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the essay API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "essay",
			Name:      "http_requests_total",
			Help:      "Total number of essay API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gema",
			Subsystem: "essay",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for essay API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"method", "route"})

		analysisOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "essay",
			Name:      "analysis_outcomes_total",
			Help:      "Analysis requests by the resolution tier that answered them.",
		}, []string{"tier"})

		versionsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "essay",
			Name:      "versions_created_total",
			Help:      "Essay versions created by kind.",
		}, []string{"kind"})

		completionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "essay",
			Name:      "completion_transitions_total",
			Help:      "Essay completion state changes.",
		}, []string{"direction"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, analysisOutcomesTotal, versionsCreatedTotal, completionTransitions)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// AnalysisOutcomes counts analyses by tier: cache, live, stale, fallback, failed.
func AnalysisOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return analysisOutcomesTotal
}

// VersionsCreated counts versions by kind: auto, manual, save, restore.
func VersionsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return versionsCreatedTotal
}

// CompletionTransitions counts completion state changes.
func CompletionTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return completionTransitions
}

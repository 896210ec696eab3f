package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Store metrics
	StoreRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tet_store_requests_total",
			Help: "Event store requests by backend, operation and outcome",
		},
		[]string{"backend", "operation", "outcome"}, // outcome: success, failure, rejected
	)

	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tet_store_request_duration_seconds",
			Help:    "Duration of event store requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tet_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Pipeline metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tet_pipeline_runs_total",
			Help: "Statistics pipeline runs by result (data, empty, degraded)",
		},
		[]string{"result"},
	)

	EventsInHistory = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tet_events_in_history",
			Help: "Number of events seen by the last pipeline run",
		},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tet_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code",
		},
		[]string{"route", "method", "status"},
	)
)

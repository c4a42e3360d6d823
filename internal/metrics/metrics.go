package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EntityMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_mutations_total",
			Help: "Entity create/update/delete calls by outcome",
		},
		[]string{"entity", "action", "outcome"}, // outcome: ok, error
	)

	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_writes_total",
			Help: "History entry writes by outcome",
		},
		[]string{"entity", "outcome"}, // outcome: ok, failed, skipped
	)

	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_gate_decisions_total",
			Help: "Access gate decisions by outcome",
		},
		[]string{"outcome"},
	)

	ViewCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_cache_lookups_total",
			Help: "View cache lookups by result",
		},
		[]string{"view", "result"}, // result: hit, miss
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partial_source_failures_total",
			Help: "Failed branches of parallel reads that were substituted with empty values",
		},
		[]string{"feature", "source"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // от 1мс до ~4с
		},
		[]string{"method", "path", "status"},
	)
)

func RecordMutation(entity, action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EntityMutations.WithLabelValues(entity, action, outcome).Inc()
}

func RecordHistoryWrite(entity, outcome string) {
	HistoryWrites.WithLabelValues(entity, outcome).Inc()
}

func RecordGateDecision(outcome string) {
	GateDecisions.WithLabelValues(outcome).Inc()
}

func RecordCacheLookup(view string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ViewCacheLookups.WithLabelValues(view, result).Inc()
}

func RecordSourceFailure(feature, source string) {
	SourceFailures.WithLabelValues(feature, source).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

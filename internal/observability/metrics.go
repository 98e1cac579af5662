// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReactionToggles counts like/dislike toggles by kind and outcome.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_reaction_toggles_total",
		Help: "Total number of post reaction toggles by kind and outcome",
	}, []string{"kind", "outcome"})

	// PostsCreated counts created posts by status.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_posts_created_total",
		Help: "Total number of posts created by status",
	}, []string{"status"})
)

// RecordToggle increments the reaction toggle counter. Outcome is
// "added", "removed", or "switched".
func RecordToggle(kind, outcome string) {
	ReactionToggles.WithLabelValues(kind, outcome).Inc()
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

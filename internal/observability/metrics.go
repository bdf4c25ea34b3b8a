// Package observability provides metrics and tracing for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// PostsPublishedTotal counts scheduled posts transitioned to published,
	// labeled by the trigger that ran the sweep.
	PostsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parasocial_posts_published_total",
		Help: "Total number of scheduled posts transitioned to published",
	}, []string{"trigger"})

	// SweepConflictsTotal counts candidates lost to a concurrent sweep.
	// A conflict is the expected outcome of overlapping sweeps, not an error.
	SweepConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parasocial_sweep_conflicts_total",
		Help: "Total number of sweep candidates already published by a concurrent sweep",
	})

	// SweepDuration records the latency of one publication sweep.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parasocial_sweep_duration_seconds",
		Help:    "Publication sweep duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// SweepErrorsTotal counts sweeps that failed due to store unavailability.
	SweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parasocial_sweep_errors_total",
		Help: "Total number of sweeps aborted because the post store was unreachable",
	})

	// ScheduledBacklog is the number of posts currently due for publication,
	// sampled by the sweeper after each run.
	ScheduledBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parasocial_scheduled_backlog",
		Help: "Number of scheduled posts currently due for publication",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parasocial_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parasocial_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

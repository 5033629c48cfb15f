// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AnalyticsRuns counts analytics computations by operation and outcome.
	AnalyticsRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cropledger_analytics_runs_total",
		Help: "Analytics computations by operation and outcome",
	}, []string{"operation", "outcome"})

	// AnalyticsDuration tracks analytics latency.
	AnalyticsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cropledger_analytics_duration_seconds",
		Help:    "Analytics computation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"operation"})

	// RecordsCaptured counts stored records by kind.
	RecordsCaptured = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cropledger_records_captured_total",
		Help: "Records captured by kind",
	}, []string{"kind"})

	// WeatherLookups counts climate lookups by result.
	WeatherLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cropledger_weather_lookups_total",
		Help: "OpenWeather lookups by result",
	}, []string{"result"})

	// SnapshotsStored counts scheduled report snapshots by result.
	SnapshotsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cropledger_report_snapshots_total",
		Help: "Scheduled analytics snapshots by result",
	}, []string{"result"})
)

// ObserveAnalytics records one analytics run started at start.
func ObserveAnalytics(operation, outcome string, start time.Time) {
	AnalyticsRuns.WithLabelValues(operation, outcome).Inc()
	AnalyticsDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

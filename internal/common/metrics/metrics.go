// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of candidate runs completed, by outcome",
		},
		[]string{"outcome"},
	)

	PipelineRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_failed_total",
			Help: "Total number of candidate runs that ended in a failure state",
		},
		[]string{"stage", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of pipeline stage processing in seconds",
		},
		[]string{"stage"},
	)

	ExternalCallRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_call_retries_total",
			Help: "Number of retried external calls, by operation",
		},
		[]string{"operation"},
	)

	SlotsFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_slots_found",
			Help:    "Number of candidate meeting slots produced per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

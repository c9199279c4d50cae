// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"time"

	"advocacy-workers/internal/common/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CasePriceQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "case_price_quotes_total",
			Help: "Case price quotes by tier",
		},
		[]string{"tier"},
	)

	CasePriceAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "case_price_amount",
			Help:    "Final quoted case price",
			Buckets: []float64{150, 250, 400, 600, 800, 1000, 1500, 2000, 3000},
		},
	)

	EligibilityMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_matches_total",
			Help: "Programs matched to profiles",
		},
		[]string{"program_id"},
	)

	EligibilityMatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eligibility_match_score",
			Help:    "Score of returned program matches",
			Buckets: []float64{50, 60, 70, 80, 90, 100},
		},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Program catalog reads served from Redis",
		},
	)

	CatalogCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Program catalog reads that went to the backing source",
		},
	)
)

// ObserveJob records the outcome of one job. An empty errorCode counts as success.
// The same outcome is mirrored to the OpenTelemetry job instruments.
func ObserveJob(taskType string, start time.Time, errorCode string) {
	elapsed := time.Since(start)
	WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

	status := "completed"
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	} else {
		status = "failed"
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	}
	observability.RecordJob(context.Background(), taskType, status, elapsed)
}

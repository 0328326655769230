// internal/common/metrics/metrics.go
package metrics

import (
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

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unitmix_extractions_total",
			Help: "Extractions by mix source and review outcome",
		},
		[]string{"source", "review_required"},
	)

	ExtractionFlags = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unitmix_flags_total",
			Help: "Diagnostic flags raised on resolved mixes",
		},
		[]string{"flag"},
	)

	UnderwritingScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "unitmix_underwriting_score",
			Help:    "Underwriting score of resolved mixes",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unitmix_cache_lookups_total",
			Help: "Extraction cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

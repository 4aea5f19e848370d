package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hunyuan3d_jobs_submitted_total",
		Help: "Total number of generation jobs submitted",
	})

	JobsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hunyuan3d_jobs_completed_total",
		Help: "Total number of generation jobs completed successfully",
	})

	JobsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hunyuan3d_jobs_failed_total",
		Help: "Total number of generation jobs that failed",
	})

	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hunyuan3d_job_duration_seconds",
		Help:    "Time taken to run a generation job to a terminal state",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hunyuan3d_active_jobs",
		Help: "Number of jobs currently executing",
	})

	SyncGenerationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hunyuan3d_sync_generations_total",
		Help: "Total number of synchronous /generate calls served",
	})

	StoredJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hunyuan3d_stored_jobs",
		Help: "Number of job records currently held in the store",
	})
)

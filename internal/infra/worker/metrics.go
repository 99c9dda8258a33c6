package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"haberozet/internal/pkg/config"
)

// WorkerMetrics tracks the scheduled digest job and the worker's config load.
type WorkerMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal            *prometheus.CounterVec
	JobDurationSeconds      prometheus.Histogram
	JobFeedsProcessedTotal  prometheus.Counter
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics registers the worker series on reg; nil selects the default registerer.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_digest_job_runs_total",
			Help: "Total number of digest job runs by status (started/success/failure/skipped)",
		}, []string{"status"}),

		JobDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_digest_job_duration_seconds",
			Help:    "Duration of digest job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		JobFeedsProcessedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_digest_job_feeds_processed_total",
			Help: "Total number of feeds processed across all digest job runs",
		}),

		JobLastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_digest_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest job run",
		}),
	}
}

func (m *WorkerMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

func (m *WorkerMetrics) RecordFeedsProcessed(count int) {
	m.JobFeedsProcessedTotal.Add(float64(count))
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}

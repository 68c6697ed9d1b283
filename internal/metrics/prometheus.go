package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framegen_jobs_total",
		Help: "Total number of extraction jobs finished, by status",
	}, []string{"status"})

	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "framegen_job_duration_seconds",
		Help:    "Wall time of extraction jobs",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framegen_frames_extracted_total",
		Help: "Total number of frames written across all jobs",
	})

	FramesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framegen_frames_published_total",
		Help: "Total number of frames forwarded to publishers, by result",
	}, []string{"result"})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framegen_active_jobs",
		Help: "Number of extraction jobs currently running",
	})
)

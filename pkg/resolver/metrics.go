package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlm_resolution_total",
			Help: "Total number of image resolutions by accelerator and version outcome",
		},
		[]string{"accelerator", "outcome"},
	)

	resolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vlm_resolution_duration_seconds",
			Help:    "End-to-end duration of an image resolution in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

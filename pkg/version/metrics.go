package version

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlm_version_fetch_total",
			Help: "Total number of version source queries by outcome",
		},
		[]string{"source", "outcome"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vlm_version_fetch_duration_seconds",
			Help:    "Duration of version source queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	fallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vlm_version_fallback_total",
			Help: "Total number of resolutions that used the static version list",
		},
	)
)

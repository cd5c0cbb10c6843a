package platform

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vlm_platform_probe_duration_seconds",
			Help:    "Time taken to fingerprint the host platform",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	probeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vlm_platform_probe_total",
			Help: "Total number of platform probes by resolved accelerator",
		},
		[]string{"accelerator"}, // accelerator class or unsupported
	)
)

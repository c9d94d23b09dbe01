package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acta_generations_total",
			Help: "Total number of acta pipeline runs by outcome",
		},
		[]string{"operation", "outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acta_llm_request_duration_seconds",
			Help:    "Duration of extraction model calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "outcome"},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "acta_render_duration_seconds",
			Help:    "Duration of template rendering in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "acta_rate_limited_total",
			Help: "Requests rejected by the generation rate limiter",
		},
	)
)

// Package metrics holds the Prometheus collectors shared across the service.
// They register on the default registry, which the metrics router exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CloudsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "frontier",
		Name:      "clouds_generated_total",
		Help:      "Synthetic clouds generated, by shape.",
	}, []string{"shape"})

	CloudPoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "frontier",
		Name:      "cloud_points",
		Help:      "Points per generated cloud.",
		Buckets:   []float64{0, 100, 500, 1000, 2500, 4000, 10000},
	})

	MalformedAnchors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "frontier",
		Name:      "malformed_anchors_total",
		Help:      "Frontier points excluded from a base curve.",
	})

	SynthesisSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "frontier",
		Name:      "synthesis_duration_seconds",
		Help:      "Time spent generating a cloud.",
		Buckets:   prometheus.DefBuckets,
	})

	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "frontier",
		Name:      "cloud_cache_requests_total",
		Help:      "Cloud cache lookups, by result (hit or miss).",
	}, []string{"result"})

	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "frontier",
		Name:      "tracker_poll_errors_total",
		Help:      "Upstream polls that failed.",
	})

	TaskTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "frontier",
		Name:      "task_transitions_total",
		Help:      "Tracked task status changes, by new status.",
	}, []string{"status"})
)

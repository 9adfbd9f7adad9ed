package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook ingestion metrics
var (
	// WebhookEventsTotal tracks received webhook events by type and outcome
	// (processed, ignored, unknown_session, unauthorized, error).
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook events by event type and processing outcome",
		},
		[]string{"event_type", "outcome"},
	)

	// WebhookProcessingDuration tracks webhook handling latency in seconds.
	WebhookProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_duration_seconds",
			Help:    "Webhook event processing duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"event_type"},
	)
)

// Liveness cache metrics
var (
	// LivenessOpsTotal tracks liveness cache operations by op and status.
	LivenessOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liveness_cache_operations_total",
			Help: "Liveness cache operations by operation and status",
		},
		[]string{"operation", "status"},
	)
)

// Lifecycle metrics
var (
	// StreamTransitionsTotal tracks durable lifecycle transitions by target
	// status and trigger (merchant, webhook).
	StreamTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_transitions_total",
			Help: "Stream lifecycle transitions by target status and trigger",
		},
		[]string{"status", "trigger"},
	)
)

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsletter"

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redis_errors_total",
		Help:      "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache-aside lookups by outcome",
	}, []string{"outcome"})

	// NotificationsFannedOut counts notifications materialized on post creation.
	NotificationsFannedOut = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_fanned_out_total",
		Help:      "Notifications created by department fan-out",
	})

	// FanOutDuration records how long the fan-out step of post creation takes.
	FanOutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_fanout_duration_seconds",
		Help:      "Time spent creating notifications for a new post",
		Buckets:   prometheus.DefBuckets,
	})

	// EngagementToggles counts like/save/follow toggles by kind and resulting state.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engagement_toggles_total",
		Help:      "Like, save and follow toggles by resulting state",
	}, []string{"kind", "state"})

	// WebSocketConnections is the gauge of open notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Open notification WebSocket connections",
	})

	// WebSocketDrops counts realtime messages dropped by reason.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "websocket_dropped_messages_total",
		Help:      "Realtime messages dropped due to backpressure or limits",
	}, []string{"reason"})
)

// RecordToggle records the outcome of a toggle endpoint.
func RecordToggle(kind string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	EngagementToggles.WithLabelValues(kind, state).Inc()
}

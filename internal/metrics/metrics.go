// Package metrics defines all custom Prometheus metrics for the jukebox
// server. It is the single source of truth for metric names, labels, and help
// strings; everything registers against the default registry at init time and
// is exposed through the admin server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jukebox"

// RequestsTotal counts protocol requests by action and outcome.
// Labels:
//   - action: the request's action string ("signup", "purchase", …, or "unknown")
//   - outcome: "ok" or "error"
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of protocol requests handled, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ConnectionsActive tracks the number of currently registered client
// connections.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Number of currently connected clients.",
	},
)

// BroadcastsTotal counts server-initiated events fanned out to clients.
// Label:
//   - event: the event name (e.g. "new_release")
var BroadcastsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcasts_total",
		Help:      "Total number of events broadcast to connected clients.",
	},
	[]string{"event"},
)

// BroadcastEvictionsTotal counts channels removed from the registry because a
// delivery attempt failed.
var BroadcastEvictionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "broadcast_evictions_total",
		Help:      "Total number of client channels evicted after a failed delivery.",
	},
)

// SnapshotsTotal counts snapshot save attempts.
// Label:
//   - result: "ok" or "error"
var SnapshotsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_total",
		Help:      "Total number of snapshot saves attempted, by result.",
	},
	[]string{"result"},
)

// SnapshotDuration measures how long a full encode-and-write takes.
var SnapshotDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "snapshot_duration_seconds",
		Help:      "Duration of snapshot encode and write to disk.",
		Buckets:   prometheus.DefBuckets,
	},
)

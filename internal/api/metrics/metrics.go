// Package metrics defines and registers all custom Prometheus metrics of the
// dashboard gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Backend adapter metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the ticketing backend.
// Labels:
//   - resource: resource family (e.g. "tickets", "auth")
//   - outcome: "ok" or the error kind (e.g. "auth_expired", "validation", "network")
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the backend, by resource and outcome.",
	},
	[]string{"resource", "outcome"},
)

// BackendRequestDuration measures backend round trips.
// Label:
//   - resource: resource family
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend requests from send to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionExpirationsTotal counts sessions ended by a backend 401. Duplicate
// 401s for an already expired session are not counted.
var SessionExpirationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expirations_total",
		Help:      "Total number of sessions expired by the backend.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials", "corrupted", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ActiveWorkspaces tracks browser sessions held in memory.
var ActiveWorkspaces = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_workspaces",
		Help:      "Number of browser session workspaces currently held in memory.",
	},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - outcome: "allow", "login", "corrupted", "landing"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts toasts raised.
// Label:
//   - kind: notification kind (e.g. "session_expired", "not_found")
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications raised, by kind.",
	},
	[]string{"kind"},
)

// ForcedNavigationsTotal counts forced navigations.
// Label:
//   - target: destination path
var ForcedNavigationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_navigations_total",
		Help:      "Total number of forced navigations, by target path.",
	},
	[]string{"target"},
)

// ── Query cache metrics ───────────────────────────────────────────────────────

// CacheLookupsTotal counts query cache reads.
// Labels:
//   - kind: resource kind of the key
//   - result: "hit", "stale" or "miss"
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_lookups_total",
		Help:      "Total number of query cache lookups, by resource kind and result.",
	},
	[]string{"kind", "result"},
)

// CacheCoalescedTotal counts callers that joined an in-flight fetch instead
// of issuing their own.
var CacheCoalescedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_coalesced_total",
		Help:      "Total number of fetches served by an identical in-flight fetch.",
	},
	[]string{"kind"},
)

// CacheDiscardedTotal counts late responses rejected because a newer fetch
// for the same key was issued.
var CacheDiscardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_discarded_total",
		Help:      "Total number of superseded fetch responses discarded.",
	},
	[]string{"kind"},
)

// RefreshQueueDepth tracks pending background refetches per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RefreshQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "refresh_queue_depth",
		Help:      "Current number of background refetches pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// CacheObserver reports query cache events to the metrics above.
type CacheObserver struct{}

func (CacheObserver) Lookup(kind, result string) {
	CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

func (CacheObserver) Coalesced(kind string) {
	CacheCoalescedTotal.WithLabelValues(kind).Inc()
}

func (CacheObserver) Discarded(kind string) {
	CacheDiscardedTotal.WithLabelValues(kind).Inc()
}

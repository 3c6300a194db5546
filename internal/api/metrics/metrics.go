// Package metrics defines and registers all custom Prometheus metrics for the
// rental protocol server. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto and exposed by the ops HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rental"

// ── Connection metrics ────────────────────────────────────────────────────────

// ConnectionsActive tracks the number of currently open client connections.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Current number of open protocol connections.",
	},
)

// ConnectionsAcceptedTotal counts accepted connections.
var ConnectionsAcceptedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_accepted_total",
		Help:      "Total number of accepted protocol connections.",
	},
)

// AcceptErrorsTotal counts failed Accept calls that did not stop the listener.
var AcceptErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accept_errors_total",
		Help:      "Total number of transient accept failures.",
	},
)

// ── Command metrics ───────────────────────────────────────────────────────────

// CommandsTotal counts processed request lines.
// Labels:
//   - command: REGISTER, LOGIN, LIST_VEHICLES, LOGOUT, "unknown" or "malformed"
//   - status: the reply status, OK or ERROR
var CommandsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total number of processed commands, by command and reply status.",
	},
	[]string{"command", "status"},
)

// CommandDuration measures how long a command takes from decode to encoded reply.
var CommandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Duration of command processing, excluding socket I/O.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"command"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts session events by outcome.
// Label:
//   - result: "written", "failed" or "dropped" (worker buffer full)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of session audit events, labelled by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending events in each audit worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// ── Catalog cache metrics ─────────────────────────────────────────────────────

// CatalogCacheTotal counts catalog cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of catalog cache lookups, labelled by result.",
	},
	[]string{"result"},
)

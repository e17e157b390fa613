// Package metrics provides Prometheus metrics for GamePilot: persona
// snapshots, recommendations, the history engine, HTTP traffic and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "gamepilot"

// ─── Persona ────────────────────────────────────────────────────────────────

// SnapshotsBuilt counts persona snapshots by archetype.
var SnapshotsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "snapshots_built_total",
	Help:      "Total persona snapshots built, by archetype.",
}, []string{"archetype"})

// SnapshotCacheHits counts snapshot cache hits and misses.
var SnapshotCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "snapshot_cache_lookups_total",
	Help:      "Snapshot cache lookups by result (hit, miss).",
}, []string{"result"})

// ValidationErrors counts rejected boundary inputs by field.
var ValidationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "validation_errors_total",
	Help:      "Rejected inputs by offending field.",
}, []string{"field"})

// ─── Recommendations ────────────────────────────────────────────────────────

// Recommendations counts recommendations by source (persona, coach) and
// whether the fallback pick was used.
var Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "recommendations_total",
	Help:      "Total recommendations served.",
}, []string{"source", "fallback"})

// RecommendationScore tracks the score of served picks.
var RecommendationScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: Namespace,
	Name:      "recommendation_score",
	Help:      "Score of served recommendations.",
	Buckets:   []float64{0, 10, 25, 40, 50, 60, 75, 90, 110},
}, []string{"source"})

// ─── History ────────────────────────────────────────────────────────────────

// EventsRecorded counts mood, session and feedback events.
var EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "events_recorded_total",
	Help:      "History events recorded by kind.",
}, []string{"kind"})

// ActiveUsers tracks users with an in-memory engine.
var ActiveUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: Namespace,
	Name:      "active_users",
	Help:      "Users with a loaded history engine.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route pattern and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: Namespace,
	Name:      "http_requests_total",
	Help:      "HTTP requests by route and status.",
}, []string{"route", "status"})

// HTTPLatency tracks API request duration in seconds.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: Namespace,
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
}, []string{"route"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: Namespace,
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

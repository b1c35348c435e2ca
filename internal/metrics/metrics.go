package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Playback metrics
var (
	PlaybackDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_decisions_total",
			Help: "Total number of negotiated playback sessions by stream type.",
		},
		[]string{"stream_type"},
	)

	PlaybackLoadFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_load_failures_total",
			Help: "Total number of playback sessions that could not be built.",
		},
		[]string{"role"},
	)

	AdjacentLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_adjacent_lookups_total",
			Help: "Total number of adjacent episode lookups by result.",
		},
		[]string{"result"},
	)

	StaleCompletionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_stale_completions_total",
			Help: "Total number of completions dropped because a newer navigation superseded them.",
		},
	)
)

// Playback report metrics
var (
	ProgressReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_reports_total",
			Help: "Total number of playback reports sent to the server.",
		},
		[]string{"kind", "status"},
	)

	ProgressReportsCoalescedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_progress_coalesced_total",
			Help: "Total number of progress reports replaced by a later one before being sent.",
		},
	)
)

// Server transport metrics
var (
	JellyfinRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jellyfin_requests_total",
			Help: "Total number of requests sent to the Jellyfin server.",
		},
		[]string{"endpoint", "status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jellyfin_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(
		PlaybackDecisionsTotal,
		PlaybackLoadFailuresTotal,
		AdjacentLookupsTotal,
		StaleCompletionsTotal,
		ProgressReportsTotal,
		ProgressReportsCoalescedTotal,
		JellyfinRequestsTotal,
		CircuitBreakerState,
	)
}

// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the photo arena service.
var (
	// Counters.
	MatchesServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_matches_served_total",
			Help: "Total matches served by the matchmaker",
		},
		[]string{"fallback"},
	)

	MatchmakingFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_matchmaking_failed_total",
			Help: "Total match requests that failed for lack of candidates",
		},
	)

	VotesRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_votes_recorded_total",
			Help: "Total votes recorded",
		},
		[]string{"voter"}, // "authenticated" or "anonymous"
	)

	VoteConflictRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_vote_conflict_retries_total",
			Help: "Total vote transactions retried after a concurrent-update conflict",
		},
	)

	EnergyDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_energy_denied_total",
			Help: "Total vote attempts denied by the energy gate",
		},
	)

	AchievementsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_achievements_awarded_total",
			Help: "Total achievements awarded",
		},
		[]string{"achievement"},
	)

	// Gauges.
	ActivePhotosCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arena_active_photos",
			Help: "Current number of active photos in the matchmaking pool",
		},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arena_scheduler_last_run_timestamp",
			Help: "Unix timestamp of the last achievement evaluation run",
		},
	)

	// Histograms.
	VoteDeltaPoints = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arena_vote_delta_points",
			Help:    "Applied ELO delta per vote",
			Buckets: prometheus.LinearBuckets(1, 3, 11), // 1 to 31 points
		},
	)

	VoteDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arena_vote_duration_seconds",
			Help:    "End-to-end vote processing time",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

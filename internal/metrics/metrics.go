package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation outcomes.
const (
	OutcomeReconciled = "reconciled"
	OutcomeRollback   = "rollback"
)

// Refresh outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	// MutationsTotal counts optimistic mutations by operation and outcome.
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgease_sync_mutations_total",
			Help: "Total number of optimistic mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// RefreshTotal counts full refresh passes by outcome.
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pgease_sync_refresh_total",
			Help: "Total number of full refresh passes",
		},
		[]string{"outcome"},
	)

	// RefreshInFlight is 1 while a refresh pass is running.
	RefreshInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pgease_sync_refresh_in_flight",
			Help: "Whether a refresh pass is currently running",
		},
	)
)

// RecordMutation increments the mutation counter.
func RecordMutation(operation, outcome string) {
	MutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordRefresh increments the refresh counter.
func RecordRefresh(outcome string) {
	RefreshTotal.WithLabelValues(outcome).Inc()
}

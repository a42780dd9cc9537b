package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/bramble/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	StateEnters     *prometheus.CounterVec
	BranchesSpawned prometheus.Counter
	BranchesSettled *prometheus.CounterVec
	CommitsWon      prometheus.Counter
	BranchDepth     prometheus.Histogram
}

// NewMetrics creates and registers the collectors on reg. Passing
// prometheus.DefaultRegisterer wires them into the default exposition.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StateEnters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_state_enters_total",
				Help: "Total number of state entries, including re-entries.",
			},
			[]string{"state"},
		),
		BranchesSpawned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bramble_branches_spawned_total",
				Help: "Total number of speculative workers launched.",
			},
		),
		BranchesSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bramble_branches_settled_total",
				Help: "Total number of speculative workers settled, by outcome.",
			},
			[]string{"outcome"},
		),
		CommitsWon: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bramble_commits_won_total",
				Help: "Total number of winning commits across exploration rounds.",
			},
		),
		BranchDepth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bramble_branch_depth",
				Help:    "Nesting depth at which speculative workers were launched.",
				Buckets: prometheus.LinearBuckets(0, 1, 8),
			},
		),
	}
	reg.MustRegister(m.StateEnters, m.BranchesSpawned, m.BranchesSettled, m.CommitsWon, m.BranchDepth)
	return m
}

// Hooks returns LifecycleHooks that feed the collectors. Combine with the
// host's own hooks by calling both from a wrapper when needed.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.StateEnters.WithLabelValues(strconv.Itoa(int(e.State))).Inc()
		},
		OnBranchSpawn: func(_ context.Context, e *domain.BranchEvent) {
			m.BranchesSpawned.Inc()
			m.BranchDepth.Observe(float64(e.Depth))
		},
		OnBranchSettle: func(_ context.Context, e *domain.BranchEvent) {
			m.BranchesSettled.WithLabelValues(e.Outcome.String()).Inc()
		},
		OnCommit: func(_ context.Context, _ *domain.CommitEvent) {
			m.CommitsWon.Inc()
		},
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTrainingMetrics() {
	r.TrainingRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qroute_training_runs_total",
			Help: "Training runs by final status",
		},
		[]string{"status"},
	)

	r.TrainingDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qroute_training_duration_seconds",
			Help:    "Wall time of a full training run",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
	)

	r.EpisodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "qroute_episodes_total",
			Help: "Completed episodes by how they terminated",
		},
		[]string{"outcome"},
	)

	r.EpisodeSteps = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qroute_episode_steps",
			Help:    "Steps taken per episode",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 200, 300, 1000},
		},
	)

	r.EpisodeReturn = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qroute_episode_return",
			Help:    "Undiscounted sum of rewards per episode",
			Buckets: []float64{-3000, -1000, -300, -100, -30, 0, 30, 60, 90, 100},
		},
	)

	r.ExplorationRate = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_exploration_rate",
			Help: "Current epsilon of the agent",
		},
	)

	r.NoLegalMoveAbortsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "qroute_no_legal_move_aborts_total",
			Help: "Episodes or rollouts aborted on a node without neighbors",
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_graph_nodes",
			Help: "Nodes in the road graph of the last run",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_graph_edges",
			Help: "Undirected edges in the road graph of the last run",
		},
	)

	r.ValueTableSize = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_value_table_entries",
			Help: "States times actions of the last value table",
		},
	)
}

func (r *Registry) initRolloutMetrics() {
	r.RolloutHops = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_rollout_hops",
			Help: "Moves in the last greedy rollout",
		},
	)

	r.RolloutCost = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_rollout_cost",
			Help: "Summed congestion cost of the last greedy rollout",
		},
	)

	r.RolloutReachedGoal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "qroute_rollout_reached_goal",
			Help: "1 if the last greedy rollout ended at the goal",
		},
	)
}

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Episode outcomes
const (
	OutcomeGoal    = "goal"
	OutcomeCeiling = "ceiling"
)

// Training run statuses
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// RecordEpisode records one finished episode and the epsilon it ran with
func (r *Registry) RecordEpisode(steps int, ret float64, reachedGoal bool, epsilon float64) {
	outcome := OutcomeCeiling
	if reachedGoal {
		outcome = OutcomeGoal
	}
	r.EpisodesTotal.WithLabelValues(outcome).Inc()
	r.EpisodeSteps.Observe(float64(steps))
	r.EpisodeReturn.Observe(ret)
	r.ExplorationRate.Set(epsilon)
}

// RecordTrainingRun records the end of a training run
func (r *Registry) RecordTrainingRun(status string, duration time.Duration) {
	r.TrainingRunsTotal.WithLabelValues(status).Inc()
	r.TrainingDuration.Observe(duration.Seconds())
}

// RecordNoLegalMove counts a dead-end abort
func (r *Registry) RecordNoLegalMove() {
	r.NoLegalMoveAbortsTotal.Inc()
}

// RecordRollout records the greedy path extracted after training
func (r *Registry) RecordRollout(hops int, cost float64, reachedGoal bool) {
	r.RolloutHops.Set(float64(hops))
	r.RolloutCost.Set(cost)
	if reachedGoal {
		r.RolloutReachedGoal.Set(1)
	} else {
		r.RolloutReachedGoal.Set(0)
	}
}

// SetProblemSize records the dimensions of the graph and value table
func (r *Registry) SetProblemSize(nodes, edges, states, actions int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.ValueTableSize.Set(float64(states * actions))
}

// UpdateSystemMetrics samples goroutine count and heap allocation
func (r *Registry) UpdateSystemMetrics() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

// WriteTextfile writes all metrics in the Prometheus text format, for the
// node-exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}

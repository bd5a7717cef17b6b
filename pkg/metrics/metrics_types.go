package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for training runs
type Registry struct {
	// Training Metrics
	TrainingRunsTotal      *prometheus.CounterVec
	TrainingDuration       prometheus.Histogram
	EpisodesTotal          *prometheus.CounterVec
	EpisodeSteps           prometheus.Histogram
	EpisodeReturn          prometheus.Histogram
	ExplorationRate        prometheus.Gauge
	NoLegalMoveAbortsTotal prometheus.Counter

	// Rollout Metrics
	RolloutHops        prometheus.Gauge
	RolloutCost        prometheus.Gauge
	RolloutReachedGoal prometheus.Gauge

	// Problem size
	GraphNodes     prometheus.Gauge
	GraphEdges     prometheus.Gauge
	ValueTableSize prometheus.Gauge

	// System Metrics
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initTrainingMetrics()
	r.initRolloutMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

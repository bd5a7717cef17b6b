package training

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/validation"
)

var (
	// ErrUnknownNode is returned when a start or goal is not in the graph
	ErrUnknownNode = errors.New("unknown node")
	// ErrStartIsGoal aliases the environment error so callers need one import
	ErrStartIsGoal = environment.ErrStartIsGoal
)

// ValidateEndpoints checks a start/goal pair before any training state is built.
// Every problem is reported; each matches ErrUnknownNode or ErrStartIsGoal.
func ValidateEndpoints(g *roadgraph.Graph, start, goal roadgraph.NodeID) error {
	if g == nil {
		return fmt.Errorf("validate endpoints: nil graph")
	}
	return validation.NewConfigValidator("endpoints").
		Custom("start", func() error { return knownNode(g, start) }).
		Custom("goal", func() error { return knownNode(g, goal) }).
		When(start == goal, func(v *validation.ConfigValidator) {
			v.Custom("goal", func() error { return fmt.Errorf("node %d: %w", goal, ErrStartIsGoal) })
		}).
		Validate()
}

func knownNode(g *roadgraph.Graph, id roadgraph.NodeID) error {
	if !g.HasNode(id) {
		return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	return nil
}

// Package rollout reads a learned route out of a trained value table.
package rollout

import (
	"fmt"

	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// Policy picks the greedy action of a state
type Policy interface {
	Greedy(state int) int
}

// Env is the subset of the environment a rollout drives
type Env interface {
	Reset() int
	Step(action int) (environment.StepResult, error)
	NodeAt(state int) (roadgraph.NodeID, bool)
	MaxSteps() int
}

// GreedyPath resets env and follows the policy without exploration until the
// episode terminates or MaxSteps moves were made. The environment's own
// out-of-range and loop-escape fallbacks still apply, so the path may differ
// from the policy's literal choices and may contain repeats.
//
// A path that does not end at the goal is a valid result. On a dead end the
// partial path is returned together with the environment error.
func GreedyPath(policy Policy, env Env) (Path, error) {
	state := env.Reset()
	start, ok := env.NodeAt(state)
	if !ok {
		return nil, fmt.Errorf("rollout: reset returned unknown state %d", state)
	}

	path := Path{start}
	for step := 0; step < env.MaxSteps(); step++ {
		res, err := env.Step(policy.Greedy(state))
		if err != nil {
			return path, fmt.Errorf("rollout after %d moves: %w", step, err)
		}
		path = append(path, res.Node)
		state = res.State
		if res.Done {
			break
		}
	}
	return path, nil
}

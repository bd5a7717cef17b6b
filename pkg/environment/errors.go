package environment

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

var (
	// ErrNoLegalMove is returned when the current node has no neighbors
	ErrNoLegalMove = errors.New("no legal move")
	// ErrEpisodeFinished is returned when stepping after the episode terminated
	ErrEpisodeFinished = errors.New("episode finished")
	// ErrNodeNotInGraph is returned when the start or goal is not a graph node
	ErrNodeNotInGraph = errors.New("node not in graph")
	// ErrStartIsGoal is returned when start and goal coincide
	ErrStartIsGoal = errors.New("start equals goal")
	// ErrInvalidOptions is returned for out-of-range options or a nil rng
	ErrInvalidOptions = errors.New("invalid environment options")
)

// StepError describes a failed environment operation
type StepError struct {
	Op    string           // "new", "step"
	Node  roadgraph.NodeID // node the agent was at
	Step  int              // step counter at the time of failure
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s at node %d (step %d): %v", e.Op, e.Node, e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// IsNoLegalMove reports whether err signals a dead-end node
func IsNoLegalMove(err error) bool {
	return errors.Is(err, ErrNoLegalMove)
}

// IsEpisodeFinished reports whether err signals a step after termination
func IsEpisodeFinished(err error) bool {
	return errors.Is(err, ErrEpisodeFinished)
}

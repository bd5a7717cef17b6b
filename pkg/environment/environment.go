// Package environment simulates driving a road graph one intersection at a time.
//
// A state is the dense index of the current node. An action is a logical
// neighbor index in [0, ActionSpace()), where the action space is sized to the
// graph's maximum degree. Actions beyond the current node's own degree are
// valid and resolve to a uniformly random neighbor.
//
// Rewards are the negated congestion cost of the traversed road, with an extra
// penalty when the move returns to a recently visited node. Reaching the goal
// replaces the reward with a fixed bonus. The MaxSteps ceiling is reported as
// termination, never as truncation.
package environment

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

const (
	DefaultMaxSteps       = 300
	DefaultLoopWindow     = 5
	DefaultRevisitPenalty = 2.0
	DefaultGoalBonus      = 100.0
)

// CostFunc resolves the congestion cost between two adjacent nodes
type CostFunc interface {
	CostOf(u, v roadgraph.NodeID) float64
}

// Options tunes episode length, loop suppression and reward shaping
type Options struct {
	MaxSteps int
	// LoopWindow is the number of most recent nodes, current included, that
	// loop suppression looks at
	LoopWindow int
	// RevisitPenalty is subtracted from the reward of a move into the window
	RevisitPenalty float64
	GoalBonus      float64
}

// DefaultOptions returns the standard shaping parameters
func DefaultOptions() Options {
	return Options{
		MaxSteps:       DefaultMaxSteps,
		LoopWindow:     DefaultLoopWindow,
		RevisitPenalty: DefaultRevisitPenalty,
		GoalBonus:      DefaultGoalBonus,
	}
}

// StepResult is the observation returned by Step
type StepResult struct {
	State  int
	Node   roadgraph.NodeID
	Reward float64
	Done   bool
	// Truncated is always false
	Truncated bool
	// Revisit is set when the move landed in the recent-history window
	Revisit bool
}

// Environment is a single-start, single-goal episode simulator.
// It is not safe for concurrent use.
type Environment struct {
	graph *roadgraph.Graph
	costs CostFunc
	rng   *rand.Rand
	opts  Options

	start roadgraph.NodeID
	goal  roadgraph.NodeID

	nodes []roadgraph.NodeID
	index map[roadgraph.NodeID]int
	width int

	current roadgraph.NodeID
	steps   int
	history []roadgraph.NodeID
	done    bool
}

// New builds an environment and resets it to start
func New(g *roadgraph.Graph, costs CostFunc, start, goal roadgraph.NodeID, opts Options, rng *rand.Rand) (*Environment, error) {
	fail := func(cause error) error {
		return &StepError{Op: "new", Node: start, Cause: cause}
	}

	if g == nil || costs == nil || rng == nil {
		return nil, fail(fmt.Errorf("%w: graph, costs and rng are required", ErrInvalidOptions))
	}
	if opts.MaxSteps < 1 {
		return nil, fail(fmt.Errorf("%w: max steps %d < 1", ErrInvalidOptions, opts.MaxSteps))
	}
	if opts.LoopWindow < 1 {
		return nil, fail(fmt.Errorf("%w: loop window %d < 1", ErrInvalidOptions, opts.LoopWindow))
	}
	if !g.HasNode(start) {
		return nil, fail(fmt.Errorf("start %d: %w", start, ErrNodeNotInGraph))
	}
	if !g.HasNode(goal) {
		return nil, fail(fmt.Errorf("goal %d: %w", goal, ErrNodeNotInGraph))
	}
	if start == goal {
		return nil, fail(ErrStartIsGoal)
	}

	nodes := slices.Clone(g.Nodes())
	index := make(map[roadgraph.NodeID]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}

	e := &Environment{
		graph:   g,
		costs:   costs,
		rng:     rng,
		opts:    opts,
		start:   start,
		goal:    goal,
		nodes:   nodes,
		index:   index,
		width:   g.MaxDegree(),
		history: make([]roadgraph.NodeID, 0, opts.LoopWindow),
	}
	e.Reset()
	return e, nil
}

// Reset starts a new episode and returns the start state
func (e *Environment) Reset() int {
	e.steps = 0
	e.current = e.start
	e.done = false
	e.history = append(e.history[:0], e.start)
	return e.index[e.start]
}

// Step moves along the neighbor selected by action
func (e *Environment) Step(action int) (StepResult, error) {
	if e.done {
		return StepResult{}, &StepError{Op: "step", Node: e.current, Step: e.steps, Cause: ErrEpisodeFinished}
	}
	neighbors := e.graph.Neighbors(e.current)
	if len(neighbors) == 0 {
		return StepResult{}, &StepError{Op: "step", Node: e.current, Step: e.steps, Cause: ErrNoLegalMove}
	}

	e.steps++

	var next roadgraph.NodeID
	if e.InRange(action) {
		next = neighbors[action]
	} else {
		next = neighbors[e.rng.IntN(len(neighbors))]
	}

	recent := e.recent()
	next = e.suppressLoop(next, neighbors, recent)
	revisit := slices.Contains(recent, next)

	reward := -e.costs.CostOf(e.current, next)
	if revisit {
		reward -= e.opts.RevisitPenalty
	}

	e.current = next
	e.remember(next)

	switch {
	case next == e.goal:
		reward = e.opts.GoalBonus
		e.done = true
	case e.steps >= e.opts.MaxSteps:
		e.done = true
	}

	return StepResult{
		State:   e.index[next],
		Node:    next,
		Reward:  reward,
		Done:    e.done,
		Revisit: revisit,
	}, nil
}

// InRange reports whether action names one of the current node's own neighbors.
// Out-of-range actions are still accepted by Step.
func (e *Environment) InRange(action int) bool {
	return action >= 0 && action < len(e.graph.Neighbors(e.current))
}

// recent returns the window minus the current node. The result aliases the
// history buffer and is only valid until the next remember.
func (e *Environment) recent() []roadgraph.NodeID {
	return e.history[:len(e.history)-1]
}

func (e *Environment) suppressLoop(proposed roadgraph.NodeID, neighbors, recent []roadgraph.NodeID) roadgraph.NodeID {
	if !slices.Contains(recent, proposed) {
		return proposed
	}
	escapes := make([]roadgraph.NodeID, 0, len(neighbors))
	for _, n := range neighbors {
		if !slices.Contains(recent, n) {
			escapes = append(escapes, n)
		}
	}
	if len(escapes) == 0 {
		return proposed
	}
	return escapes[e.rng.IntN(len(escapes))]
}

func (e *Environment) remember(id roadgraph.NodeID) {
	if len(e.history) == e.opts.LoopWindow {
		copy(e.history, e.history[1:])
		e.history = e.history[:len(e.history)-1]
	}
	e.history = append(e.history, id)
}

// ObservationSpace returns the number of states
func (e *Environment) ObservationSpace() int { return len(e.nodes) }

// ActionSpace returns the number of logical actions, the graph's maximum degree
func (e *Environment) ActionSpace() int { return e.width }

// NodeAt maps a state index back to its node
func (e *Environment) NodeAt(state int) (roadgraph.NodeID, bool) {
	if state < 0 || state >= len(e.nodes) {
		return 0, false
	}
	return e.nodes[state], true
}

// StateOf maps a node to its state index
func (e *Environment) StateOf(id roadgraph.NodeID) (int, bool) {
	s, ok := e.index[id]
	return s, ok
}

func (e *Environment) Start() roadgraph.NodeID   { return e.start }
func (e *Environment) Goal() roadgraph.NodeID    { return e.goal }
func (e *Environment) Current() roadgraph.NodeID { return e.current }
func (e *Environment) StepCount() int            { return e.steps }
func (e *Environment) Done() bool                { return e.done }
func (e *Environment) MaxSteps() int             { return e.opts.MaxSteps }
func (e *Environment) Options() Options          { return e.opts }

// History returns a copy of the loop-suppression window, oldest first
func (e *Environment) History() []roadgraph.NodeID {
	return slices.Clone(e.history)
}

// Package agent implements a tabular Q-learning agent with epsilon-greedy
// exploration.
//
// Greedy selection breaks ties on the first index attaining the row maximum,
// so that training under a fixed seed is reproducible.
package agent

import (
	"math"
	"math/rand/v2"
	"slices"
)

const (
	DefaultAlpha        = 0.1
	DefaultGamma        = 0.9
	DefaultEpsilon      = 0.5
	DefaultMinEpsilon   = 0.05
	DefaultEpsilonDecay = 0.995
)

// Options are the learning hyperparameters, fixed for the agent's lifetime
type Options struct {
	Alpha        float64 // learning rate
	Gamma        float64 // discount factor
	Epsilon      float64 // initial exploration rate
	MinEpsilon   float64
	EpsilonDecay float64 // multiplier applied once per episode
}

// DefaultOptions returns the standard hyperparameters
func DefaultOptions() Options {
	return Options{
		Alpha:        DefaultAlpha,
		Gamma:        DefaultGamma,
		Epsilon:      DefaultEpsilon,
		MinEpsilon:   DefaultMinEpsilon,
		EpsilonDecay: DefaultEpsilonDecay,
	}
}

// QAgent owns a dense states×actions value table.
// It is not safe for concurrent use.
type QAgent struct {
	opts    Options
	rng     *rand.Rand
	states  int
	actions int
	q       []float64
	epsilon float64
	decays  int
}

// New returns an agent with a zeroed value table
func New(states, actions int, opts Options, rng *rand.Rand) *QAgent {
	if states < 0 {
		states = 0
	}
	if actions < 0 {
		actions = 0
	}
	return &QAgent{
		opts:    opts,
		rng:     rng,
		states:  states,
		actions: actions,
		q:       make([]float64, states*actions),
		epsilon: opts.Epsilon,
	}
}

// Row returns the value row of state. The slice aliases the table.
func (a *QAgent) Row(state int) []float64 {
	off := state * a.actions
	return a.q[off : off+a.actions]
}

// ChooseAction picks a uniformly random action with probability epsilon and
// the greedy action otherwise. An agent with no actions always returns 0.
func (a *QAgent) ChooseAction(state int) int {
	if a.actions == 0 {
		return 0
	}
	if a.rng.Float64() < a.epsilon {
		return a.rng.IntN(a.actions)
	}
	return a.Greedy(state)
}

// Greedy returns the first action with the highest value in state's row
func (a *QAgent) Greedy(state int) int {
	if a.actions == 0 {
		return 0
	}
	return argmax(a.Row(state))
}

// Update applies the one-step Q-learning rule for the transition
// (state, action) → next with the given reward.
func (a *QAgent) Update(state, action int, reward float64, next int, done bool) {
	target := reward
	if !done {
		target += a.opts.Gamma * a.bestValue(next)
	}
	i := state*a.actions + action
	a.q[i] += a.opts.Alpha * (target - a.q[i])
}

// DecayExploration applies one episode of decay. After n calls epsilon is
// max(MinEpsilon, Epsilon*EpsilonDecay^n), computed in closed form so the
// value does not drift with the number of calls.
func (a *QAgent) DecayExploration() {
	a.decays++
	a.epsilon = a.epsilonAfter(a.decays)
}

func (a *QAgent) epsilonAfter(n int) float64 {
	return max(a.opts.MinEpsilon, a.opts.Epsilon*math.Pow(a.opts.EpsilonDecay, float64(n)))
}

func (a *QAgent) bestValue(state int) float64 {
	if a.actions == 0 {
		return 0
	}
	return slices.Max(a.Row(state))
}

// Value returns Q[state, action]
func (a *QAgent) Value(state, action int) float64 {
	return a.q[state*a.actions+action]
}

// Epsilon returns the current exploration rate
func (a *QAgent) Epsilon() float64 { return a.epsilon }

// Decays returns how many times DecayExploration has been applied
func (a *QAgent) Decays() int { return a.decays }

// States returns the number of table rows
func (a *QAgent) States() int { return a.states }

// Actions returns the number of table columns
func (a *QAgent) Actions() int { return a.actions }

// Options returns the hyperparameters the agent was built with
func (a *QAgent) Options() Options { return a.opts }

// Table returns a copy of the value table, one row per state
func (a *QAgent) Table() [][]float64 {
	out := make([][]float64, a.states)
	for s := range out {
		out[s] = slices.Clone(a.Row(s))
	}
	return out
}

// Load replaces the value table and the decay count, for resuming from a
// snapshot. The table must match the agent's shape.
func (a *QAgent) Load(table [][]float64, decays int) bool {
	if len(table) != a.states {
		return false
	}
	for _, row := range table {
		if len(row) != a.actions {
			return false
		}
	}
	for s, row := range table {
		copy(a.Row(s), row)
	}
	a.decays = max(decays, 0)
	a.epsilon = a.opts.Epsilon
	if a.decays > 0 {
		a.epsilon = a.epsilonAfter(a.decays)
	}
	return true
}

func argmax(row []float64) int {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

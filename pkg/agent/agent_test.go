package agent

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func greedyOptions() Options {
	opts := DefaultOptions()
	opts.Epsilon = 0
	opts.MinEpsilon = 0
	return opts
}

func TestNew_ZeroTable(t *testing.T) {
	a := New(4, 3, DefaultOptions(), newRand(1))

	assert.Equal(t, 4, a.States())
	assert.Equal(t, 3, a.Actions())
	assert.Equal(t, DefaultEpsilon, a.Epsilon())
	for _, row := range a.Table() {
		assert.Equal(t, []float64{0, 0, 0}, row)
	}
}

func TestGreedy_FirstIndexTieBreak(t *testing.T) {
	a := New(2, 4, greedyOptions(), newRand(1))
	assert.Equal(t, 0, a.Greedy(0), "all-zero row picks index 0")

	copy(a.Row(1), []float64{-1, 3, 3, 2})
	assert.Equal(t, 1, a.Greedy(1))
	assert.Equal(t, 1, a.ChooseAction(1), "epsilon 0 is purely greedy")

	copy(a.Row(0), []float64{-5, -2, -2, -9})
	assert.Equal(t, 1, a.Greedy(0))
}

func TestChooseAction_FullExploration(t *testing.T) {
	opts := DefaultOptions()
	opts.Epsilon = 1
	a := New(1, 5, opts, newRand(2))
	copy(a.Row(0), []float64{100, 0, 0, 0, 0})

	seen := make(map[int]int)
	for i := 0; i < 2000; i++ {
		action := a.ChooseAction(0)
		require.GreaterOrEqual(t, action, 0)
		require.Less(t, action, 5)
		seen[action]++
	}
	assert.Len(t, seen, 5, "every action should be sampled")
}

func TestChooseAction_SameSeedSameChoices(t *testing.T) {
	draw := func() []int {
		opts := DefaultOptions()
		opts.Epsilon = 0.6
		a := New(3, 4, opts, newRand(42))
		out := make([]int, 100)
		for i := range out {
			out[i] = a.ChooseAction(i % 3)
		}
		return out
	}
	assert.Equal(t, draw(), draw())
}

func TestUpdate(t *testing.T) {
	opts := greedyOptions()
	opts.Alpha = 0.5
	opts.Gamma = 0.9
	a := New(2, 2, opts, newRand(3))
	copy(a.Row(1), []float64{10, 4})

	a.Update(0, 1, -1, 1, false)
	// target = -1 + 0.9*10 = 8 ; Q = 0 + 0.5*8
	assert.InDelta(t, 4.0, a.Value(0, 1), 1e-12)

	a.Update(0, 0, 100, 1, true)
	// terminal target ignores the next state
	assert.InDelta(t, 50.0, a.Value(0, 0), 1e-12)

	assert.Equal(t, []float64{10, 4}, a.Row(1), "only Q[state, action] changes")
}

func TestUpdate_OffPolicyTargetUsesRowMaximum(t *testing.T) {
	opts := greedyOptions()
	opts.Alpha = 1
	opts.Gamma = 1
	a := New(2, 3, opts, newRand(4))
	copy(a.Row(1), []float64{-3, 7, 2})

	a.Update(0, 2, 0, 1, false)
	assert.Equal(t, 7.0, a.Value(0, 2))
}

func TestDecayExploration(t *testing.T) {
	opts := DefaultOptions()
	opts.Epsilon = 1
	opts.EpsilonDecay = 0.5
	opts.MinEpsilon = 0.2
	a := New(1, 1, opts, newRand(5))

	a.DecayExploration()
	assert.Equal(t, 0.5, a.Epsilon())
	a.DecayExploration()
	assert.Equal(t, 0.25, a.Epsilon())
	a.DecayExploration()
	assert.Equal(t, 0.2, a.Epsilon(), "floored at MinEpsilon")
	a.DecayExploration()
	assert.Equal(t, 0.2, a.Epsilon())
	assert.Equal(t, 4, a.Decays())
}

func TestZeroActionAgent(t *testing.T) {
	a := New(3, 0, DefaultOptions(), newRand(6))

	assert.NotPanics(t, func() {
		assert.Equal(t, 0, a.ChooseAction(1))
		assert.Equal(t, 0, a.Greedy(2))
	})
	assert.Empty(t, a.Row(1))
}

func TestLoad(t *testing.T) {
	opts := DefaultOptions()
	opts.Epsilon = 0.8
	opts.EpsilonDecay = 0.5
	opts.MinEpsilon = 0.01
	a := New(2, 2, opts, newRand(7))

	ok := a.Load([][]float64{{1, 2}, {3, 4}}, 2)
	require.True(t, ok)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, a.Table())
	assert.Equal(t, 0.2, a.Epsilon())
	assert.Equal(t, 2, a.Decays())

	assert.False(t, a.Load([][]float64{{1, 2}}, 0))
	assert.False(t, a.Load([][]float64{{1}, {2}}, 0))

	table := a.Table()
	table[0][0] = 99
	assert.Equal(t, 1.0, a.Value(0, 0), "Table returns a copy")
}

func TestAgentProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("terminal updates move Q monotonically toward the reward", prop.ForAll(
		func(alpha, reward, start float64, n int) bool {
			opts := greedyOptions()
			opts.Alpha = alpha
			a := New(1, 1, opts, newRand(8))
			a.Row(0)[0] = start

			gap := math.Abs(reward - a.Value(0, 0))
			for i := 0; i < n; i++ {
				a.Update(0, 0, reward, 0, true)
				next := math.Abs(reward - a.Value(0, 0))
				if next > gap+1e-9 {
					return false
				}
				gap = next
			}
			return true
		},
		gen.Float64Range(0.01, 1),
		gen.Float64Range(-200, 200),
		gen.Float64Range(-200, 200),
		gen.IntRange(1, 60),
	))

	properties.Property("epsilon after n decays is max(min, initial*decay^n)", prop.ForAll(
		func(initial, decay, floor float64, n int) bool {
			opts := Options{Alpha: 0.1, Gamma: 0.9, Epsilon: initial, MinEpsilon: floor * initial, EpsilonDecay: decay}
			a := New(1, 1, opts, newRand(9))
			prev := a.Epsilon()
			for i := 0; i < n; i++ {
				a.DecayExploration()
				if a.Epsilon() > prev {
					return false
				}
				prev = a.Epsilon()
			}
			want := math.Max(opts.MinEpsilon, initial*math.Pow(decay, float64(n)))
			return a.Epsilon() == want
		},
		gen.Float64Range(0.01, 1),
		gen.Float64Range(0.5, 1),
		gen.Float64Range(0, 1),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}

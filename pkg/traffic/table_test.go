package traffic

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

func grid(t *testing.T) *roadgraph.Graph {
	t.Helper()
	g := roadgraph.New()
	for _, e := range [][2]roadgraph.NodeID{{1, 2}, {2, 3}, {3, 4}, {4, 1}, {1, 3}} {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestCostOf_Symmetric(t *testing.T) {
	tbl := NewTable()
	tbl.Set(1, 2, 7)

	assert.Equal(t, 7.0, tbl.CostOf(1, 2))
	assert.Equal(t, 7.0, tbl.CostOf(2, 1))
	assert.Equal(t, DefaultCost, tbl.CostOf(2, 3))

	_, ok := tbl.Lookup(2, 1)
	assert.False(t, ok, "Lookup must not fall back")
}

func TestCostOf_ExactEntryWins(t *testing.T) {
	tbl := NewTable()
	tbl.Set(1, 2, 4)
	tbl.Set(2, 1, 9)

	assert.Equal(t, 4.0, tbl.CostOf(1, 2))
	assert.Equal(t, 9.0, tbl.CostOf(2, 1))
}

func TestGenerate(t *testing.T) {
	g := grid(t)

	tbl, err := Generate(g, rand.New(rand.NewPCG(1, 2)), DefaultLow, DefaultHigh)
	require.NoError(t, err)
	assert.Equal(t, 2*g.EdgeCount(), tbl.Len())

	for _, e := range g.Edges() {
		fwd, ok := tbl.Lookup(e[0], e[1])
		require.True(t, ok)
		back, ok := tbl.Lookup(e[1], e[0])
		require.True(t, ok)
		assert.Equal(t, fwd, back)
		assert.GreaterOrEqual(t, fwd, float64(DefaultLow))
		assert.LessOrEqual(t, fwd, float64(DefaultHigh))
		assert.Equal(t, fwd, float64(int(fwd)), "costs are integers")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := grid(t)
	a, err := Generate(g, rand.New(rand.NewPCG(9, 9)), 1, 10)
	require.NoError(t, err)
	b, err := Generate(g, rand.New(rand.NewPCG(9, 9)), 1, 10)
	require.NoError(t, err)

	for _, e := range g.Edges() {
		assert.Equal(t, a.CostOf(e[0], e[1]), b.CostOf(e[0], e[1]))
	}
}

func TestGenerate_FixedRange(t *testing.T) {
	tbl, err := Generate(grid(t), rand.New(rand.NewPCG(3, 4)), 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, tbl.CostOf(1, 3))

	_, err = Generate(grid(t), rand.New(rand.NewPCG(3, 4)), 6, 5)
	assert.Error(t, err)
}

func TestFromDocumentAndMerge(t *testing.T) {
	cost := 8.0
	doc := &roadgraph.Document{Edges: []roadgraph.EdgeSpec{
		{From: 1, To: 2, Cost: &cost},
		{From: 2, To: 3},
	}}

	explicit := FromDocument(doc)
	assert.Equal(t, 2, explicit.Len())
	assert.Equal(t, 8.0, explicit.CostOf(2, 1))

	base := NewTable()
	base.SetBoth(1, 2, 3)
	base.SetBoth(2, 3, 4)
	base.Merge(explicit)
	assert.Equal(t, 8.0, base.CostOf(1, 2))
	assert.Equal(t, 4.0, base.CostOf(3, 2))
}

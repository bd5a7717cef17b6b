// Package traffic holds the congestion cost of each road.
package traffic

import (
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

const (
	// DefaultCost is charged for an edge with no entry in either direction
	DefaultCost = 1.0

	DefaultLow  = 1
	DefaultHigh = 10
)

// Table maps ordered node pairs to a congestion cost. Lookups are symmetric:
// CostOf(u, v) falls back to the (v, u) entry, then to DefaultCost.
type Table struct {
	costs map[[2]roadgraph.NodeID]float64
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{costs: make(map[[2]roadgraph.NodeID]float64)}
}

// Set records the cost of u→v only. Use SetBoth for undirected roads.
func (t *Table) Set(u, v roadgraph.NodeID, cost float64) {
	t.costs[[2]roadgraph.NodeID{u, v}] = cost
}

// SetBoth records the same cost for u→v and v→u
func (t *Table) SetBoth(u, v roadgraph.NodeID, cost float64) {
	t.Set(u, v, cost)
	t.Set(v, u, cost)
}

// Lookup returns the exact (u, v) entry without fallback
func (t *Table) Lookup(u, v roadgraph.NodeID) (float64, bool) {
	c, ok := t.costs[[2]roadgraph.NodeID{u, v}]
	return c, ok
}

// CostOf returns the cost of travelling between u and v
func (t *Table) CostOf(u, v roadgraph.NodeID) float64 {
	if c, ok := t.Lookup(u, v); ok {
		return c
	}
	if c, ok := t.Lookup(v, u); ok {
		return c
	}
	return DefaultCost
}

// Len returns the number of ordered entries
func (t *Table) Len() int {
	return len(t.costs)
}

// Generate draws an integer cost in [low, high] for every edge of g and stores
// it under both orderings. Edges are visited in graph order so a seeded rng
// always produces the same table.
func Generate(g *roadgraph.Graph, rng *rand.Rand, low, high int) (*Table, error) {
	if low > high {
		return nil, fmt.Errorf("generate traffic: low %d > high %d", low, high)
	}
	t := NewTable()
	for _, e := range g.Edges() {
		cost := low + rng.IntN(high-low+1)
		t.SetBoth(e[0], e[1], float64(cost))
	}
	return t, nil
}

// FromDocument builds a table from the explicit costs in a graph file
func FromDocument(doc *roadgraph.Document) *Table {
	t := NewTable()
	for _, e := range doc.Edges {
		if e.Cost != nil {
			t.SetBoth(e.From, e.To, *e.Cost)
		}
	}
	return t
}

// Merge copies entries of other into t, overwriting existing ones
func (t *Table) Merge(other *Table) {
	for k, v := range other.costs {
		t.costs[k] = v
	}
}

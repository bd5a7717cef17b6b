// Package roadgraph holds the read-only road network the learner drives on.
//
// The graph is undirected. Node enumeration order is first-insertion order and
// each node's neighbor order is the order its incident edges were added, so
// two graphs built from the same input always enumerate identically.
package roadgraph

import (
	"errors"
	"fmt"
)

// NodeID identifies an intersection
type NodeID uint64

var (
	ErrSelfLoop     = errors.New("self loop")
	ErrNodeNotFound = errors.New("node not found")
)

// Graph is an undirected road network
type Graph struct {
	order     []NodeID
	adjacency map[NodeID][]NodeID
	edges     map[[2]NodeID]struct{}
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		adjacency: make(map[NodeID][]NodeID),
		edges:     make(map[[2]NodeID]struct{}),
	}
}

// AddNode inserts an isolated node. Adding an existing node is a no-op.
func (g *Graph) AddNode(id NodeID) {
	if _, ok := g.adjacency[id]; ok {
		return
	}
	g.adjacency[id] = nil
	g.order = append(g.order, id)
}

// AddEdge inserts the undirected edge {u, v}, creating missing endpoints.
// Duplicate edges are ignored; self loops are rejected.
func (g *Graph) AddEdge(u, v NodeID) error {
	if u == v {
		return fmt.Errorf("add edge %d-%d: %w", u, v, ErrSelfLoop)
	}
	g.AddNode(u)
	g.AddNode(v)

	key := edgeKey(u, v)
	if _, ok := g.edges[key]; ok {
		return nil
	}
	g.edges[key] = struct{}{}
	g.adjacency[u] = append(g.adjacency[u], v)
	g.adjacency[v] = append(g.adjacency[v], u)
	return nil
}

// HasNode reports whether id is part of the graph
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.adjacency[id]
	return ok
}

// HasEdge reports whether u and v are adjacent, in either direction
func (g *Graph) HasEdge(u, v NodeID) bool {
	_, ok := g.edges[edgeKey(u, v)]
	return ok
}

// Nodes returns the node enumeration. The slice must not be modified.
func (g *Graph) Nodes() []NodeID {
	return g.order
}

// Neighbors returns the adjacency list of id. The slice must not be modified.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	return g.adjacency[id]
}

// Degree returns the number of neighbors of id
func (g *Graph) Degree(id NodeID) int {
	return len(g.adjacency[id])
}

// MaxDegree returns the largest node degree, 0 for an edgeless graph
func (g *Graph) MaxDegree() int {
	max := 0
	for _, id := range g.order {
		if d := len(g.adjacency[id]); d > max {
			max = d
		}
	}
	return max
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Edges returns every undirected edge once, as (u, v) in insertion order of u's
// adjacency with u enumerated before v.
func (g *Graph) Edges() [][2]NodeID {
	out := make([][2]NodeID, 0, len(g.edges))
	seen := make(map[[2]NodeID]struct{}, len(g.edges))
	for _, u := range g.order {
		for _, v := range g.adjacency[u] {
			key := edgeKey(u, v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, [2]NodeID{u, v})
		}
	}
	return out
}

func edgeKey(u, v NodeID) [2]NodeID {
	if u > v {
		u, v = v, u
	}
	return [2]NodeID{u, v}
}

package rollout

import (
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-qroute/pkg/environment"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// Path is an ordered walk of node identifiers, start first
type Path []roadgraph.NodeID

// Last returns the final node, false for an empty path
func (p Path) Last() (roadgraph.NodeID, bool) {
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1], true
}

// Reaches reports whether the walk ended at goal
func (p Path) Reaches(goal roadgraph.NodeID) bool {
	last, ok := p.Last()
	return ok && last == goal
}

// Hops returns the number of moves
func (p Path) Hops() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Cost sums the congestion cost of every traversed road
func (p Path) Cost(costs environment.CostFunc) float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += costs.CostOf(p[i-1], p[i])
	}
	return total
}

// Revisits counts entries that repeat an earlier node
func (p Path) Revisits() int {
	seen := make(map[roadgraph.NodeID]struct{}, len(p))
	n := 0
	for _, id := range p {
		if _, ok := seen[id]; ok {
			n++
			continue
		}
		seen[id] = struct{}{}
	}
	return n
}

// String renders the path as "1 -> 2 -> 3"
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, id := range p {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, " -> ")
}

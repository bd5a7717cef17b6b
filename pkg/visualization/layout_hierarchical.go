package visualization

import (
	"github.com/dd0wney/cluso-qroute/pkg/algorithms"
	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// HierarchicalLayout puts the root on the top row and every other node on the
// row of its hop distance from the root. Unreachable nodes share the last row.
type HierarchicalLayout struct {
	config LayoutConfig
	root   roadgraph.NodeID
}

// NewHierarchicalLayout creates a layout rooted at root, usually the start node
func NewHierarchicalLayout(config LayoutConfig, root roadgraph.NodeID) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config, root: root}
}

// ComputeLayout arranges nodes by hop distance
func (hl *HierarchicalLayout) ComputeLayout(g *roadgraph.Graph) map[roadgraph.NodeID]Position {
	nodes := g.Nodes()
	positions := make(map[roadgraph.NodeID]Position, len(nodes))
	if len(nodes) == 0 {
		return positions
	}

	distances := algorithms.HopDistances(g, hl.root)
	deepest := 0
	for _, d := range distances {
		deepest = max(deepest, d)
	}

	levels := make([][]roadgraph.NodeID, deepest+1)
	var unreachable []roadgraph.NodeID
	for _, id := range nodes {
		if d, ok := distances[id]; ok {
			levels[d] = append(levels[d], id)
		} else {
			unreachable = append(unreachable, id)
		}
	}
	if len(unreachable) > 0 {
		levels = append(levels, unreachable)
	}
	if len(levels[0]) == 0 {
		levels = levels[1:]
	}

	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))
	levelWidth := hl.config.Width - 2*hl.config.Padding
	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := levelWidth / float64(len(level)+1)
		for nodeIdx, id := range level {
			positions[id] = Position{X: hl.config.Padding + spacing*float64(nodeIdx+1), Y: y}
		}
	}
	return positions
}

package visualization

import (
	"math"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// CircularLayout arranges nodes in a circle in graph order
type CircularLayout struct {
	config LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

// ComputeLayout arranges nodes in a circle
func (cl *CircularLayout) ComputeLayout(g *roadgraph.Graph) map[roadgraph.NodeID]Position {
	nodes := g.Nodes()
	positions := make(map[roadgraph.NodeID]Position, len(nodes))
	if len(nodes) == 0 {
		return positions
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	radius := math.Min(centerX, centerY) - cl.config.Padding
	angleStep := 2 * math.Pi / float64(len(nodes))

	for i, id := range nodes {
		angle := float64(i) * angleStep
		positions[id] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}
	return positions
}

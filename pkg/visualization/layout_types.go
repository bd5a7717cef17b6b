// Package visualization lays out a road graph in 2D and exports it with the
// learned route highlighted, for rendering by an external viewer.
package visualization

import "github.com/dd0wney/cluso-qroute/pkg/roadgraph"

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
}

// DefaultLayoutConfig returns an 800×600 canvas
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{Width: 800, Height: 600, Iterations: 50, Padding: 50}
}

// Layout assigns a position to every node of a graph
type Layout interface {
	ComputeLayout(g *roadgraph.Graph) map[roadgraph.NodeID]Position
}

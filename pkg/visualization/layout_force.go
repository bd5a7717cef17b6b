package visualization

import (
	"math"
	"math/rand/v2"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// ForceDirectedLayout implements force-directed graph layout. Initial
// positions come from rng, so a seeded rng yields a repeatable picture.
type ForceDirectedLayout struct {
	config LayoutConfig
	rng    *rand.Rand
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config LayoutConfig, rng *rand.Rand) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config, rng: rng}
}

// ComputeLayout computes positions using the Fruchterman-Reingold scheme
func (fdl *ForceDirectedLayout) ComputeLayout(g *roadgraph.Graph) map[roadgraph.NodeID]Position {
	nodes := g.Nodes()
	switch len(nodes) {
	case 0:
		return make(map[roadgraph.NodeID]Position)
	case 1:
		return map[roadgraph.NodeID]Position{
			nodes[0]: {X: fdl.config.Width / 2, Y: fdl.config.Height / 2},
		}
	}

	w, h, pad := fdl.config.Width, fdl.config.Height, fdl.config.Padding
	positions := make(map[roadgraph.NodeID]Position, len(nodes))
	for _, id := range nodes {
		positions[id] = Position{
			X: fdl.rng.Float64()*(w-2*pad) + pad,
			Y: fdl.rng.Float64()*(h-2*pad) + pad,
		}
	}

	k := math.Sqrt((w * h) / float64(len(nodes))) // optimal distance
	temperature := w / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[roadgraph.NodeID]Position, len(nodes))

		// Repulsion between all pairs
		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Max(math.Hypot(dx, dy), 0.01)

				force := (k * k) / dist
				fx, fy := dx/dist*force, dy/dist*force
				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction along roads
		for _, a := range nodes {
			for _, b := range g.Neighbors(a) {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[a] = Position{X: forces[a].X - dx/dist*force, Y: forces[a].Y - dy/dist*force}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range nodes {
			fx, fy := forces[id].X, forces[id].Y
			force := math.Hypot(fx, fy)
			if force > 0 {
				step := math.Min(force, temperature) * cool
				positions[id] = Position{
					X: positions[id].X + fx/force*step,
					Y: positions[id].Y + fy/force*step,
				}
			}
		}

		temperature *= 0.95
	}

	return normalizePositions(positions, w, h, pad)
}

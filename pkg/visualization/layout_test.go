package visualization

import (
	"encoding/json"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
	"github.com/dd0wney/cluso-qroute/pkg/traffic"
)

// path graph 1-2-3-4 with a spur 2-5 and an isolated node 6
func testGraph(t *testing.T) *roadgraph.Graph {
	t.Helper()
	g := roadgraph.New()
	for _, e := range [][2]roadgraph.NodeID{{1, 2}, {2, 3}, {3, 4}, {2, 5}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	g.AddNode(6)
	return g
}

func inBounds(t *testing.T, positions map[roadgraph.NodeID]Position, cfg LayoutConfig) {
	t.Helper()
	for id, pos := range positions {
		if pos.X < 0 || pos.X > cfg.Width || pos.Y < 0 || pos.Y > cfg.Height {
			t.Errorf("node %d at (%.2f, %.2f) is outside the %gx%g canvas", id, pos.X, pos.Y, cfg.Width, cfg.Height)
		}
		if math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
			t.Errorf("node %d has NaN position", id)
		}
	}
}

// TestForceDirectedLayout tests the force-directed layout algorithm
func TestForceDirectedLayout(t *testing.T) {
	g := testGraph(t)
	cfg := DefaultLayoutConfig()

	positions := NewForceDirectedLayout(cfg, rand.New(rand.NewPCG(1, 2))).ComputeLayout(g)
	if len(positions) != 6 {
		t.Fatalf("Expected 6 positions, got %d", len(positions))
	}
	inBounds(t, positions, cfg)

	again := NewForceDirectedLayout(cfg, rand.New(rand.NewPCG(1, 2))).ComputeLayout(g)
	for id, pos := range positions {
		if again[id] != pos {
			t.Errorf("node %d: seeded layout is not repeatable: %v vs %v", id, pos, again[id])
		}
	}
}

func TestForceDirectedLayout_SmallGraphs(t *testing.T) {
	cfg := DefaultLayoutConfig()
	layout := NewForceDirectedLayout(cfg, rand.New(rand.NewPCG(1, 2)))

	if got := layout.ComputeLayout(roadgraph.New()); len(got) != 0 {
		t.Errorf("empty graph: got %d positions", len(got))
	}

	single := roadgraph.New()
	single.AddNode(7)
	pos := layout.ComputeLayout(single)[7]
	if pos.X != cfg.Width/2 || pos.Y != cfg.Height/2 {
		t.Errorf("single node should be centered, got %v", pos)
	}
}

// TestCircularLayout tests the circular layout algorithm
func TestCircularLayout(t *testing.T) {
	g := testGraph(t)
	cfg := LayoutConfig{Width: 800, Height: 600}

	positions := NewCircularLayout(cfg).ComputeLayout(g)
	if len(positions) != 6 {
		t.Fatalf("Expected 6 positions, got %d", len(positions))
	}

	centerX, centerY := 400.0, 300.0
	expectedRadius := 250.0 // min(400, 300) - default padding 50
	for id, pos := range positions {
		radius := math.Hypot(pos.X-centerX, pos.Y-centerY)
		if math.Abs(radius-expectedRadius) > 1e-9 {
			t.Errorf("node %d radius %.3f, want %.3f", id, radius, expectedRadius)
		}
	}
	if first := positions[1]; math.Abs(first.X-650) > 1e-9 || math.Abs(first.Y-300) > 1e-9 {
		t.Errorf("first node should sit at angle 0, got %v", first)
	}
}

// TestHierarchicalLayout tests rows by hop distance
func TestHierarchicalLayout(t *testing.T) {
	g := testGraph(t)
	cfg := DefaultLayoutConfig()

	positions := NewHierarchicalLayout(cfg, 1).ComputeLayout(g)
	if len(positions) != 6 {
		t.Fatalf("Expected 6 positions, got %d", len(positions))
	}
	inBounds(t, positions, cfg)

	// rows: {1} {2} {3,5} {4} {6}
	if !(positions[1].Y < positions[2].Y && positions[2].Y < positions[3].Y && positions[3].Y < positions[4].Y) {
		t.Errorf("rows are not ordered by distance: %v", positions)
	}
	if positions[3].Y != positions[5].Y {
		t.Errorf("nodes 3 and 5 share a distance but not a row")
	}
	if positions[6].Y <= positions[4].Y {
		t.Errorf("unreachable node should be on the last row")
	}
}

func TestHierarchicalLayout_MissingRoot(t *testing.T) {
	g := testGraph(t)
	positions := NewHierarchicalLayout(DefaultLayoutConfig(), 42).ComputeLayout(g)
	if len(positions) != 6 {
		t.Fatalf("Expected 6 positions, got %d", len(positions))
	}
	for id, pos := range positions {
		if pos.Y != positions[1].Y {
			t.Errorf("node %d: with no reachable root every node shares one row", id)
		}
	}
}

func TestNormalizePositions(t *testing.T) {
	in := map[roadgraph.NodeID]Position{1: {X: -10, Y: 5}, 2: {X: 10, Y: 5}}
	out := normalizePositions(in, 200, 100, 10)

	if out[1].X != 10 || out[2].X != 190 {
		t.Errorf("x not scaled to padding bounds: %v", out)
	}
	if out[1].Y != 10 {
		t.Errorf("flat y range should map to the top padding, got %v", out[1].Y)
	}
}

func TestBuildRouteMap(t *testing.T) {
	g := testGraph(t)
	costs := traffic.NewTable()
	costs.SetBoth(2, 3, 7)
	cfg := DefaultLayoutConfig()

	m := BuildRouteMap(g, costs, []roadgraph.NodeID{1, 2, 3, 4}, 4, NewCircularLayout(cfg), cfg)

	roles := map[roadgraph.NodeID]string{}
	for _, n := range m.Nodes {
		roles[n.ID] = n.Role
	}
	want := map[roadgraph.NodeID]string{1: RoleStart, 2: RoleRoute, 3: RoleRoute, 4: RoleGoal, 5: "", 6: ""}
	for id, role := range want {
		if roles[id] != role {
			t.Errorf("node %d role %q, want %q", id, roles[id], role)
		}
	}

	onRoute := 0
	for _, e := range m.Edges {
		if e.OnRoute {
			onRoute++
		}
		if e.From == 2 && e.To == 3 && e.Cost != 7 {
			t.Errorf("edge 2-3 cost %g, want 7", e.Cost)
		}
		if e.From == 2 && e.To == 5 && (e.OnRoute || e.Cost != traffic.DefaultCost) {
			t.Errorf("spur edge = %+v", e)
		}
	}
	if onRoute != 3 {
		t.Errorf("Expected 3 route edges, got %d", onRoute)
	}
	if !m.ReachedGoal || m.Goal != 4 {
		t.Errorf("goal = %d reached %v, want 4 reached", m.Goal, m.ReachedGoal)
	}
}

// TestBuildRouteMap_StoppedShort tests that a walk which never reached the
// goal keeps its last node as a route node and still tags the real goal
func TestBuildRouteMap_StoppedShort(t *testing.T) {
	g := testGraph(t)
	cfg := DefaultLayoutConfig()

	m := BuildRouteMap(g, traffic.NewTable(), []roadgraph.NodeID{1, 2, 1, 2}, 4, NewCircularLayout(cfg), cfg)

	roles := map[roadgraph.NodeID]string{}
	for _, n := range m.Nodes {
		roles[n.ID] = n.Role
	}
	want := map[roadgraph.NodeID]string{1: RoleStart, 2: RoleRoute, 3: "", 4: RoleGoal, 5: "", 6: ""}
	for id, role := range want {
		if roles[id] != role {
			t.Errorf("node %d role %q, want %q", id, roles[id], role)
		}
	}
	if m.ReachedGoal {
		t.Error("ReachedGoal should be false for a route ending at 2")
	}
}

func TestRouteMap_WriteFile(t *testing.T) {
	g := testGraph(t)
	cfg := DefaultLayoutConfig()
	m := BuildRouteMap(g, traffic.NewTable(), []roadgraph.NodeID{2, 1}, 1, NewCircularLayout(cfg), cfg)

	path := filepath.Join(t.TempDir(), "route.json")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var decoded struct {
		Nodes []struct {
			ID   uint64  `json:"id"`
			X    float64 `json:"x"`
			Role string  `json:"role"`
		} `json:"nodes"`
		Edges []struct {
			OnRoute bool `json:"on_route"`
		} `json:"edges"`
		Route []uint64 `json:"route"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded.Nodes) != 6 || len(decoded.Edges) != 4 {
		t.Errorf("got %d nodes and %d edges", len(decoded.Nodes), len(decoded.Edges))
	}
	if decoded.Nodes[0].Role != RoleGoal || decoded.Nodes[1].Role != RoleStart {
		t.Errorf("roles = %q, %q", decoded.Nodes[0].Role, decoded.Nodes[1].Role)
	}
	if len(decoded.Route) != 2 || decoded.Route[0] != 2 {
		t.Errorf("route = %v", decoded.Route)
	}
}

package visualization

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// Node roles in a route map
const (
	RoleStart = "start"
	RoleGoal  = "goal"
	RoleRoute = "route"
)

// Costs resolves the congestion cost of a road
type Costs interface {
	CostOf(u, v roadgraph.NodeID) float64
}

// MapNode is a positioned intersection
type MapNode struct {
	ID roadgraph.NodeID `json:"id"`
	Position
	Role string `json:"role,omitempty"`
}

// MapEdge is a road with its cost; OnRoute marks roads the route traverses
type MapEdge struct {
	From    roadgraph.NodeID `json:"from"`
	To      roadgraph.NodeID `json:"to"`
	Cost    float64          `json:"cost"`
	OnRoute bool             `json:"on_route"`
}

// RouteMap is a laid-out graph with one highlighted route
type RouteMap struct {
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Nodes       []MapNode          `json:"nodes"`
	Edges       []MapEdge          `json:"edges"`
	Route       []roadgraph.NodeID `json:"route"`
	Goal        roadgraph.NodeID   `json:"goal"`
	ReachedGoal bool               `json:"reached_goal"`
}

// BuildRouteMap positions every node with layout and tags the route.
// The route's first node is the start and goal is tagged wherever it is, so
// a walk that stopped short ends on a plain route node.
// Nodes and edges keep graph order.
func BuildRouteMap(g *roadgraph.Graph, costs Costs, route []roadgraph.NodeID, goal roadgraph.NodeID, layout Layout, config LayoutConfig) *RouteMap {
	positions := layout.ComputeLayout(g)

	onRoute := make(map[roadgraph.NodeID]bool, len(route))
	traversed := make(map[[2]roadgraph.NodeID]bool, len(route))
	for i, id := range route {
		onRoute[id] = true
		if i > 0 {
			traversed[[2]roadgraph.NodeID{route[i-1], id}] = true
			traversed[[2]roadgraph.NodeID{id, route[i-1]}] = true
		}
	}

	m := &RouteMap{
		Width:  config.Width,
		Height: config.Height,
		Nodes:  make([]MapNode, 0, g.NodeCount()),
		Edges:  make([]MapEdge, 0, g.EdgeCount()),
		Route:  route,
		Goal:   goal,
	}

	for _, id := range g.Nodes() {
		node := MapNode{ID: id, Position: positions[id]}
		if onRoute[id] {
			node.Role = RoleRoute
		}
		m.Nodes = append(m.Nodes, node)
	}
	m.setRole(goal, RoleGoal)
	if len(route) > 0 {
		m.setRole(route[0], RoleStart)
		m.ReachedGoal = route[len(route)-1] == goal
	}

	for _, e := range g.Edges() {
		m.Edges = append(m.Edges, MapEdge{
			From:    e[0],
			To:      e[1],
			Cost:    costs.CostOf(e[0], e[1]),
			OnRoute: traversed[e],
		})
	}
	return m
}

func (m *RouteMap) setRole(id roadgraph.NodeID, role string) {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			m.Nodes[i].Role = role
			return
		}
	}
}

// ExportJSON exports the route map to JSON
func (m *RouteMap) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// WriteFile writes the JSON export to path
func (m *RouteMap) WriteFile(path string) error {
	data, err := m.ExportJSON()
	if err != nil {
		return fmt.Errorf("encode route map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write route map: %w", err)
	}
	return nil
}

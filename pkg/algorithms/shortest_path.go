// Package algorithms holds breadth-first searches over a road graph, used for
// reachability checks before training and for layered map layouts.
package algorithms

import (
	"container/list"
	"slices"

	"github.com/dd0wney/cluso-qroute/pkg/roadgraph"
)

// ShortestPath finds a fewest-hops path using BFS. It returns nil when goal
// is unreachable or either node is missing.
func ShortestPath(g *roadgraph.Graph, start, goal roadgraph.NodeID) []roadgraph.NodeID {
	if !g.HasNode(start) || !g.HasNode(goal) {
		return nil
	}
	if start == goal {
		return []roadgraph.NodeID{start}
	}

	parent := map[roadgraph.NodeID]roadgraph.NodeID{start: start}
	queue := list.New()
	queue.PushBack(start)

	for queue.Len() > 0 {
		current := queue.Remove(queue.Front()).(roadgraph.NodeID)
		for _, next := range g.Neighbors(current) {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == goal {
				return reconstructPath(parent, start, goal)
			}
			queue.PushBack(next)
		}
	}
	return nil
}

// Reachable reports whether some path joins start and goal
func Reachable(g *roadgraph.Graph, start, goal roadgraph.NodeID) bool {
	return ShortestPath(g, start, goal) != nil
}

// HopDistances returns the BFS distance from source to every reachable node
func HopDistances(g *roadgraph.Graph, source roadgraph.NodeID) map[roadgraph.NodeID]int {
	if !g.HasNode(source) {
		return nil
	}
	distances := map[roadgraph.NodeID]int{source: 0}
	queue := list.New()
	queue.PushBack(source)

	for queue.Len() > 0 {
		current := queue.Remove(queue.Front()).(roadgraph.NodeID)
		for _, next := range g.Neighbors(current) {
			if _, visited := distances[next]; !visited {
				distances[next] = distances[current] + 1
				queue.PushBack(next)
			}
		}
	}
	return distances
}

// reconstructPath walks parent links back from goal and reverses them
func reconstructPath(parent map[roadgraph.NodeID]roadgraph.NodeID, start, goal roadgraph.NodeID) []roadgraph.NodeID {
	path := []roadgraph.NodeID{goal}
	for node := goal; node != start; {
		node = parent[node]
		path = append(path, node)
	}
	slices.Reverse(path)
	return path
}

package routing

import (
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// ShortestPath returns a path with the fewest hops from src to dst, or nil
// when dst cannot be reached. A path from a node to itself is [src].
func ShortestPath(g Graph, src, dst topology.NodeID) []topology.NodeID {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}

	parent := make(map[topology.NodeID]topology.NodeID)
	visited := map[topology.NodeID]bool{src: true}
	queue := []topology.NodeID{src}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current == dst {
			return reconstruct(parent, src, dst)
		}

		for _, neighbor := range g.Neighbors(current) {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			parent[neighbor] = current
			queue = append(queue, neighbor)
		}
	}

	return nil
}

// Distances returns the hop count from src to every reachable node
func Distances(g Graph, src topology.NodeID) map[topology.NodeID]int {
	if !g.HasNode(src) {
		return map[topology.NodeID]int{}
	}
	dist := map[topology.NodeID]int{src: 0}
	queue := []topology.NodeID{src}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range g.Neighbors(current) {
			if _, seen := dist[neighbor]; !seen {
				dist[neighbor] = dist[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return dist
}

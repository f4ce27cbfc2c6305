package routing

import (
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// ReliablePath finds the path from src to dst with the lowest accumulated
// drop rate. Entering node v costs rates.PDR(v). Only transit-capable nodes
// (see topology.Role.Transit) are expanded, except dst, which is always
// eligible so a route can terminate at an endpoint. Equal-cost candidates are
// expanded in insertion order, so the result is stable for fixed input.
func ReliablePath(g RoleGraph, rates DropRates, src, dst topology.NodeID) []topology.NodeID {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}

	distances := map[topology.NodeID]uint64{src: 0}
	parent := make(map[topology.NodeID]topology.NodeID)
	finalized := make(map[topology.NodeID]bool)

	var queue minQueue
	queue.Push(src, 0)

	for queue.Len() > 0 {
		node, distance, _ := queue.Pop()

		if node == dst {
			return reconstruct(parent, src, dst)
		}
		if finalized[node] {
			continue
		}
		finalized[node] = true

		for _, neighbor := range g.Neighbors(node) {
			if neighbor != dst && !g.Role(neighbor).Transit() {
				continue
			}
			next := distance + rates.PDR(neighbor)
			if known, seen := distances[neighbor]; !seen || next < known {
				distances[neighbor] = next
				parent[neighbor] = node
				queue.Push(neighbor, next)
			}
		}
	}

	return nil
}

// Cost is the accumulated drop rate of path: the sum of the PDR of every
// node after the first.
func Cost(rates DropRates, path []topology.NodeID) uint64 {
	var total uint64
	for i := 1; i < len(path); i++ {
		total += rates.PDR(path[i])
	}
	return total
}

// Package routing derives paths through a topology.
//
// Two strategies are provided: ShortestPath is a plain breadth-first search
// that minimises hop count, and ReliablePath is a Dijkstra variant whose cost
// of entering a node is that node's estimated drop rate, so nodes with a
// history of losing traffic are routed around.
//
// Every search fails soft: an unknown source, an unknown destination or an
// unreachable destination all produce an empty path.
package routing

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// Graph is the read-only view the searches walk
type Graph interface {
	HasNode(id topology.NodeID) bool
	Neighbors(id topology.NodeID) []topology.NodeID
}

// RoleGraph adds role information used to restrict transit nodes
type RoleGraph interface {
	Graph
	Role(id topology.NodeID) topology.Role
}

// DropRates supplies the per-node cost of the reliable search
type DropRates interface {
	PDR(id topology.NodeID) uint64
}

// Strategy selects a path search
type Strategy int

const (
	// StrategyReliable prefers historically reliable relays
	StrategyReliable Strategy = iota
	// StrategyBFS prefers the fewest hops
	StrategyBFS
)

func (s Strategy) String() string {
	switch s {
	case StrategyBFS:
		return "bfs"
	case StrategyReliable:
		return "reliable"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps "bfs" / "reliable" (also "dijkstra", "pdr") to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bfs", "hops", "shortest":
		return StrategyBFS, nil
	case "reliable", "dijkstra", "pdr", "":
		return StrategyReliable, nil
	default:
		return StrategyReliable, fmt.Errorf("unknown routing strategy %q", s)
	}
}

// Find runs the search selected by s
func Find(s Strategy, g RoleGraph, rates DropRates, src, dst topology.NodeID) []topology.NodeID {
	if s == StrategyBFS {
		return ShortestPath(g, src, dst)
	}
	return ReliablePath(g, rates, src, dst)
}

// reconstruct walks parent pointers from dst back to src
func reconstruct(parent map[topology.NodeID]topology.NodeID, src, dst topology.NodeID) []topology.NodeID {
	path := []topology.NodeID{dst}
	for node := dst; node != src; {
		node = parent[node]
		path = append(path, node)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Package topology holds a participant's local view of the network graph:
// nodes, undirected links, per-node labels and roles, and the delivery
// history the reliable router uses as its cost model.
//
// A Topology performs no locking. Callers that share one across goroutines
// must serialise access themselves.
package topology

import (
	"slices"
)

// Topology is an in-memory undirected graph of node identifiers
type Topology struct {
	nodes  []NodeID                       // insertion order, unique
	edges  map[NodeID]map[NodeID]struct{} // adjacency sets, always symmetric
	labels map[NodeID]string
	roles  map[NodeID]Role

	history *HistoryTable
}

// New creates an empty topology
func New() *Topology {
	return &Topology{
		nodes:   make([]NodeID, 0),
		edges:   make(map[NodeID]map[NodeID]struct{}),
		labels:  make(map[NodeID]string),
		roles:   make(map[NodeID]Role),
		history: NewHistoryTable(),
	}
}

// AddNode inserts id with an empty adjacency set. It returns false and leaves
// the topology untouched when id is already known.
func (t *Topology) AddNode(id NodeID) bool {
	if _, exists := t.edges[id]; exists {
		return false
	}
	t.nodes = append(t.nodes, id)
	t.edges[id] = make(map[NodeID]struct{})
	return true
}

// AddEdge links a and b in both directions. Both nodes must exist.
func (t *Topology) AddEdge(a, b NodeID) error {
	if a == b {
		return edgeError("AddEdge", a, b, ErrSelfLoop)
	}
	adjA, okA := t.edges[a]
	adjB, okB := t.edges[b]
	if !okA || !okB {
		return edgeError("AddEdge", a, b, ErrNodeNotFound)
	}
	adjA[b] = struct{}{}
	adjB[a] = struct{}{}
	return nil
}

// RemoveNode deletes id and strips it from every neighbour's adjacency set.
// Label, role and history entries are kept until the id is reused or cleared.
func (t *Topology) RemoveNode(id NodeID) {
	adj, exists := t.edges[id]
	if !exists {
		return
	}
	for neighbor := range adj {
		delete(t.edges[neighbor], id)
	}
	delete(t.edges, id)
	t.nodes = slices.DeleteFunc(t.nodes, func(n NodeID) bool { return n == id })
}

// RemoveEdges removes the link between a and b in both directions, leaving
// the nodes and all other links intact.
func (t *Topology) RemoveEdges(a, b NodeID) {
	if adj, ok := t.edges[a]; ok {
		delete(adj, b)
	}
	if adj, ok := t.edges[b]; ok {
		delete(adj, a)
	}
}

// Neighbors returns the ids adjacent to id in ascending order, or an empty
// slice when id is unknown. The order makes path searches deterministic.
func (t *Topology) Neighbors(id NodeID) []NodeID {
	adj := t.edges[id]
	out := make([]NodeID, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// HasNode reports whether id is part of the topology
func (t *Topology) HasNode(id NodeID) bool {
	_, ok := t.edges[id]
	return ok
}

// HasEdge reports whether a and b are linked
func (t *Topology) HasEdge(a, b NodeID) bool {
	_, ok := t.edges[a][b]
	return ok
}

// Nodes returns a copy of the node list in insertion order
func (t *Topology) Nodes() []NodeID {
	return slices.Clone(t.nodes)
}

// Edges returns every link once, normalised and sorted
func (t *Topology) Edges() []Edge {
	out := make([]Edge, 0)
	for a, adj := range t.edges {
		for b := range adj {
			if a < b {
				out = append(out, Edge{A: a, B: b})
			}
		}
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if x.A != y.A {
			return int(x.A) - int(y.A)
		}
		return int(x.B) - int(y.B)
	})
	return out
}

// Label returns the label of id, if any
func (t *Topology) Label(id NodeID) (string, bool) {
	l, ok := t.labels[id]
	return l, ok
}

// SetLabel sets the human-readable label of id
func (t *Topology) SetLabel(id NodeID, label string) {
	t.labels[id] = label
}

// Role returns the role of id, RoleUnknown when it was never set
func (t *Topology) Role(id NodeID) Role {
	return t.roles[id]
}

// SetRole tags id with a role
func (t *Topology) SetRole(id NodeID, role Role) {
	t.roles[id] = role
}

// Roles returns a copy of every role assignment
func (t *Topology) Roles() map[NodeID]Role {
	out := make(map[NodeID]Role, len(t.roles))
	for id, r := range t.roles {
		out[id] = r
	}
	return out
}

// History exposes the delivery statistics table. The router reads drop
// rates from it; the transport layer writes outcomes into it.
func (t *Topology) History() *HistoryTable {
	return t.history
}

// UpdateNodeHistory records one delivery outcome for every id in ids
func (t *Topology) UpdateNodeHistory(ids []NodeID, dropped bool) {
	t.history.Record(ids, dropped)
}

// PDR returns the estimated drop rate of id, the reliable router's cost
func (t *Topology) PDR(id NodeID) uint64 {
	return t.history.PDR(id)
}

// Percent returns the drop rate of id clamped to 0-100
func (t *Topology) Percent(id NodeID) uint64 {
	return t.history.Percent(id)
}

// ResetHistory zeroes every delivery counter
func (t *Topology) ResetHistory() {
	t.history.Reset()
}

// Clear removes every node, link, label, role and history entry
func (t *Topology) Clear() {
	t.nodes = t.nodes[:0]
	t.edges = make(map[NodeID]map[NodeID]struct{})
	t.labels = make(map[NodeID]string)
	t.roles = make(map[NodeID]Role)
	t.history.Reset()
}

// Statistics summarises the current graph
func (t *Topology) Statistics() Statistics {
	stats := Statistics{NodeCount: len(t.nodes)}
	for _, adj := range t.edges {
		stats.EdgeCount += len(adj)
	}
	stats.EdgeCount /= 2
	for _, id := range t.nodes {
		switch t.roles[id] {
		case RoleRelay:
			stats.RelayCount++
		case RoleEndpoint:
			stats.EndpointCount++
		}
	}
	return stats
}

package topology

import (
	"errors"
)

// NodeSpec describes one node in a Snapshot
type NodeSpec struct {
	ID    NodeID `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Role  Role   `json:"role,omitempty" yaml:"role,omitempty"`
}

// Snapshot is a serialisable copy of a topology, as reported to a
// simulation controller or loaded from a config file.
type Snapshot struct {
	Nodes   []NodeSpec                   `json:"nodes" yaml:"nodes"`
	Edges   []Edge                       `json:"edges" yaml:"edges"`
	History map[NodeID]NodePacketHistory `json:"history,omitempty" yaml:"history,omitempty"`
}

// Snapshot copies the current state
func (t *Topology) Snapshot() Snapshot {
	nodes := make([]NodeSpec, 0, len(t.nodes))
	for _, id := range t.nodes {
		nodes = append(nodes, NodeSpec{ID: id, Label: t.labels[id], Role: t.roles[id]})
	}
	return Snapshot{
		Nodes:   nodes,
		Edges:   t.Edges(),
		History: t.history.snapshot(),
	}
}

// Restore builds a topology from s. Every edge must reference a declared
// node; all offending edges are reported together.
func Restore(s Snapshot) (*Topology, error) {
	t := New()
	for _, n := range s.Nodes {
		t.AddNode(n.ID)
		if n.Label != "" {
			t.SetLabel(n.ID, n.Label)
		}
		if n.Role != RoleUnknown {
			t.SetRole(n.ID, n.Role)
		}
	}

	var errs []error
	for _, e := range s.Edges {
		if err := t.AddEdge(e.A, e.B); err != nil {
			errs = append(errs, &TopologyError{Op: "Restore", Node: e.A, Peer: e.B, Cause: errors.Unwrap(err)})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for id, h := range s.History {
		t.history.entries[id] = &NodePacketHistory{PacketsSent: h.PacketsSent, PacketsDropped: h.PacketsDropped}
	}
	return t, nil
}

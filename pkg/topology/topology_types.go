package topology

import (
	"fmt"
	"strings"
)

// NodeID names a participant of the simulated network
type NodeID uint8

// Role tells the reliable router whether a node may carry transit traffic
type Role uint8

const (
	// RoleUnknown is the zero value for nodes nobody has tagged yet
	RoleUnknown Role = iota
	// RoleRelay nodes forward traffic (drones)
	RoleRelay
	// RoleEndpoint nodes only originate or terminate traffic (clients, servers)
	RoleEndpoint
)

// String returns the canonical lower-case role name
func (r Role) String() string {
	switch r {
	case RoleRelay:
		return "relay"
	case RoleEndpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

// ParseRole maps a role name to a Role. "drone" is accepted for relays and
// "client"/"server" for endpoints; anything else is RoleUnknown.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relay", "drone":
		return RoleRelay
	case "endpoint", "client", "server":
		return RoleEndpoint
	default:
		return RoleUnknown
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// Transit reports whether the reliable router may route through a node with
// this role. Untagged nodes are allowed so a graph without role data still
// routes.
func (r Role) Transit() bool {
	return r != RoleEndpoint
}

// NodePacketHistory counts delivery outcomes observed through a node
type NodePacketHistory struct {
	PacketsSent    uint64 `json:"packets_sent" yaml:"packets_sent"`
	PacketsDropped uint64 `json:"packets_dropped" yaml:"packets_dropped"`
}

// Edge is an undirected link, normalised so that A < B
type Edge struct {
	A NodeID `json:"a" yaml:"a"`
	B NodeID `json:"b" yaml:"b"`
}

// NewEdge returns the normalised edge between a and b
func NewEdge(a, b NodeID) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e.A, e.B)
}

// Statistics is a point-in-time summary of a topology
type Statistics struct {
	NodeCount     int
	EdgeCount     int
	RelayCount    int
	EndpointCount int
}

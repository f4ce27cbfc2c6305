package routing

import (
	"fmt"
	"slices"

	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// RoutingHeader is a source route: the full hop list and a cursor naming the
// hop that should receive the packet next.
type RoutingHeader struct {
	Hops     []topology.NodeID `json:"hops"`
	HopIndex int               `json:"hop_index"`
}

// NewHeader wraps hops with the cursor on the first hop after the source
func NewHeader(hops []topology.NodeID) RoutingHeader {
	return RoutingHeader{Hops: hops, HopIndex: 1}
}

// Header computes a reliable route from src to dst and returns it as a
// header whose cursor already points past the source.
func Header(g RoleGraph, rates DropRates, src, dst topology.NodeID) RoutingHeader {
	return NewHeader(ReliablePath(g, rates, src, dst))
}

// Empty reports whether the header carries no route
func (h RoutingHeader) Empty() bool {
	return len(h.Hops) == 0
}

// Source returns the first hop
func (h RoutingHeader) Source() (topology.NodeID, bool) {
	if h.Empty() {
		return 0, false
	}
	return h.Hops[0], true
}

// Destination returns the last hop
func (h RoutingHeader) Destination() (topology.NodeID, bool) {
	if h.Empty() {
		return 0, false
	}
	return h.Hops[len(h.Hops)-1], true
}

// NextHop returns the hop under the cursor
func (h RoutingHeader) NextHop() (topology.NodeID, bool) {
	if h.HopIndex < 0 || h.HopIndex >= len(h.Hops) {
		return 0, false
	}
	return h.Hops[h.HopIndex], true
}

// Previous returns the hop the packet was last forwarded by
func (h RoutingHeader) Previous() (topology.NodeID, bool) {
	i := h.HopIndex - 1
	if i < 0 || i >= len(h.Hops) {
		return 0, false
	}
	return h.Hops[i], true
}

// Advance moves the cursor one hop forward; false once past the destination
func (h *RoutingHeader) Advance() bool {
	if h.HopIndex >= len(h.Hops) {
		return false
	}
	h.HopIndex++
	return h.HopIndex < len(h.Hops)
}

// IsFinal reports whether the cursor is on the destination
func (h RoutingHeader) IsFinal() bool {
	return !h.Empty() && h.HopIndex == len(h.Hops)-1
}

// Remaining is the number of hops still to visit, including the cursor
func (h RoutingHeader) Remaining() int {
	if h.HopIndex >= len(h.Hops) {
		return 0
	}
	return len(h.Hops) - h.HopIndex
}

// Traversed returns the route from the source up to and including the hop
// under the cursor: every node the packet has reached or is being handed to.
// This is the segment a transport reports to the node history.
func (h RoutingHeader) Traversed() []topology.NodeID {
	end := min(h.HopIndex+1, len(h.Hops))
	if end <= 0 {
		return nil
	}
	return slices.Clone(h.Hops[:end])
}

// Reverse returns the header for a reply travelling back to the source
func (h RoutingHeader) Reverse() RoutingHeader {
	hops := slices.Clone(h.Hops)
	slices.Reverse(hops)
	return NewHeader(hops)
}

func (h RoutingHeader) String() string {
	return fmt.Sprintf("%v@%d", h.Hops, h.HopIndex)
}

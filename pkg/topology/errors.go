package topology

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrSelfLoop     = errors.New("edge endpoints are the same node")
)

// TopologyError describes a rejected topology mutation
type TopologyError struct {
	Op    string // Operation that failed (e.g. "AddEdge")
	Node  NodeID // Offending node
	Peer  NodeID // Other endpoint, for edge operations
	Cause error
}

// Error implements the error interface.
func (e *TopologyError) Error() string {
	if e.Op == "AddEdge" || e.Op == "Restore" {
		return fmt.Sprintf("%s %d-%d: %v", e.Op, e.Node, e.Peer, e.Cause)
	}
	return fmt.Sprintf("%s node %d: %v", e.Op, e.Node, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TopologyError) Unwrap() error {
	return e.Cause
}

func edgeError(op string, a, b NodeID, cause error) error {
	return &TopologyError{Op: op, Node: a, Peer: b, Cause: cause}
}

// IsNotFound returns true if err reports a missing node.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

package topology

// MaxPDR is the ceiling Percent applies to the drop-rate estimate
const MaxPDR = 100

// HistoryTable holds per-node delivery counters. Counters only grow; Reset is
// the one way back to zero.
type HistoryTable struct {
	entries map[NodeID]*NodePacketHistory
}

// NewHistoryTable returns an empty table
func NewHistoryTable() *HistoryTable {
	return &HistoryTable{entries: make(map[NodeID]*NodePacketHistory)}
}

// Record bumps the dropped counter of every id when dropped is true and the
// sent counter otherwise. Only loss-eligible units (message fragments) should
// be recorded.
func (h *HistoryTable) Record(ids []NodeID, dropped bool) {
	for _, id := range ids {
		entry, ok := h.entries[id]
		if !ok {
			entry = &NodePacketHistory{}
			h.entries[id] = entry
		}
		if dropped {
			entry.PacketsDropped++
		} else {
			entry.PacketsSent++
		}
	}
}

// Get returns a copy of the counters for id, zero if nothing was recorded
func (h *HistoryTable) Get(id NodeID) NodePacketHistory {
	if entry, ok := h.entries[id]; ok {
		return *entry
	}
	return NodePacketHistory{}
}

// PDR returns the estimated drop rate dropped*100/sent, truncated. Drops are
// counted separately from sends, so the value can exceed 100; a node that
// drops nine times per send costs more than one that drops twice. A node
// that has not forwarded anything yet reports 0.
func (h *HistoryTable) PDR(id NodeID) uint64 {
	entry, ok := h.entries[id]
	if !ok || entry.PacketsSent == 0 {
		return 0
	}
	return entry.PacketsDropped * 100 / entry.PacketsSent
}

// Percent is PDR clamped to MaxPDR, for display
func (h *HistoryTable) Percent(id NodeID) uint64 {
	return min(h.PDR(id), MaxPDR)
}

// Len returns the number of nodes with recorded history
func (h *HistoryTable) Len() int {
	return len(h.entries)
}

// Reset forgets every counter
func (h *HistoryTable) Reset() {
	h.entries = make(map[NodeID]*NodePacketHistory)
}

// Forget drops the counters of a single node
func (h *HistoryTable) Forget(id NodeID) {
	delete(h.entries, id)
}

func (h *HistoryTable) snapshot() map[NodeID]NodePacketHistory {
	if len(h.entries) == 0 {
		return nil
	}
	out := make(map[NodeID]NodePacketHistory, len(h.entries))
	for id, entry := range h.entries {
		out[id] = *entry
	}
	return out
}

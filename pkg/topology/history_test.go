package topology

import "testing"

// TestPDR_NoTraffic reports zero before anything was sent
func TestPDR_NoTraffic(t *testing.T) {
	topo := New()
	topo.AddNode(1)

	if got := topo.PDR(1); got != 0 {
		t.Errorf("PDR(1) = %d, want 0", got)
	}
	if got := topo.PDR(200); got != 0 {
		t.Errorf("PDR(unknown) = %d, want 0", got)
	}
}

// TestPDR_Truncates follows integer truncation of dropped*100/sent
func TestPDR_Truncates(t *testing.T) {
	topo := New()
	ids := []NodeID{1}
	for i := 0; i < 3; i++ {
		topo.UpdateNodeHistory(ids, false)
	}
	topo.UpdateNodeHistory(ids, true)

	if got := topo.PDR(1); got != 33 {
		t.Errorf("PDR(1) = %d, want 33", got)
	}
	h := topo.History().Get(1)
	if h.PacketsSent != 3 || h.PacketsDropped != 1 {
		t.Errorf("history = %+v, want sent=3 dropped=1", h)
	}
}

// TestPDR_Table covers the ratio edge cases
func TestPDR_Table(t *testing.T) {
	tests := []struct {
		name    string
		sent    int
		dropped int
		want    uint64
		percent uint64
	}{
		{"one of one", 1, 1, 100, 100},
		{"drops only", 0, 5, 0, 0},
		{"half", 4, 2, 50, 50},
		{"two drops per send", 3, 6, 200, MaxPDR},
		{"seven drops per three sends", 3, 7, 233, MaxPDR},
		{"clean", 10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistoryTable()
			for i := 0; i < tt.sent; i++ {
				h.Record([]NodeID{9}, false)
			}
			for i := 0; i < tt.dropped; i++ {
				h.Record([]NodeID{9}, true)
			}
			if got := h.PDR(9); got != tt.want {
				t.Errorf("PDR = %d, want %d", got, tt.want)
			}
			if got := h.Percent(9); got != tt.percent {
				t.Errorf("Percent = %d, want %d", got, tt.percent)
			}
		})
	}
}

// TestHistory_RecordsEveryHop updates all ids of a path segment
func TestHistory_RecordsEveryHop(t *testing.T) {
	h := NewHistoryTable()
	h.Record([]NodeID{1, 2, 3}, false)
	h.Record([]NodeID{2, 3}, true)

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if got := h.Get(1); got.PacketsSent != 1 || got.PacketsDropped != 0 {
		t.Errorf("node 1 = %+v", got)
	}
	if got := h.Get(3); got.PacketsSent != 1 || got.PacketsDropped != 1 {
		t.Errorf("node 3 = %+v", got)
	}

	h.Forget(3)
	if h.Get(3) != (NodePacketHistory{}) {
		t.Error("Forget(3) kept counters")
	}

	h.Reset()
	if h.Len() != 0 {
		t.Error("Reset() kept counters")
	}
}

// TestResetHistory keeps the graph intact
func TestResetHistory(t *testing.T) {
	topo := New()
	topo.AddNode(1)
	topo.AddNode(2)
	_ = topo.AddEdge(1, 2)
	topo.UpdateNodeHistory([]NodeID{1}, true)
	topo.UpdateNodeHistory([]NodeID{1}, false)

	topo.ResetHistory()

	if topo.PDR(1) != 0 || topo.History().Len() != 0 {
		t.Error("ResetHistory did not clear counters")
	}
	if !topo.HasEdge(1, 2) {
		t.Error("ResetHistory touched the graph")
	}
}

// TestPDR_HeavyDroppersStayDistinct keeps the estimate uncapped so the router
// can tell a 9:1 dropper from a 2:1 dropper
func TestPDR_HeavyDroppersStayDistinct(t *testing.T) {
	topo := New()
	topo.AddNode(1)
	topo.AddNode(2)
	topo.UpdateNodeHistory([]NodeID{1, 2}, false)
	for i := 0; i < 9; i++ {
		topo.UpdateNodeHistory([]NodeID{1}, true)
	}
	for i := 0; i < 2; i++ {
		topo.UpdateNodeHistory([]NodeID{2}, true)
	}

	if topo.PDR(1) != 900 || topo.PDR(2) != 200 {
		t.Errorf("PDR = %d, %d, want 900, 200", topo.PDR(1), topo.PDR(2))
	}
	if topo.Percent(1) != MaxPDR || topo.Percent(2) != MaxPDR {
		t.Errorf("Percent = %d, %d, want both %d", topo.Percent(1), topo.Percent(2), MaxPDR)
	}
}

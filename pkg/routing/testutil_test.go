package routing

import (
	"testing"

	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// twoChains builds two disjoint relay chains between endpoints 11 and 12:
// 11-1-2-3-12 and 11-4-5-6-12.
func twoChains(t *testing.T) *topology.Topology {
	t.Helper()
	topo := topology.New()
	for _, id := range []topology.NodeID{11, 1, 2, 3, 4, 5, 6, 12} {
		topo.AddNode(id)
	}
	for _, e := range [][2]topology.NodeID{
		{11, 1}, {1, 2}, {2, 3}, {3, 12},
		{11, 4}, {4, 5}, {5, 6}, {6, 12},
	} {
		if err := topo.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d) failed: %v", e[0], e[1], err)
		}
	}
	for id := topology.NodeID(1); id <= 6; id++ {
		topo.SetRole(id, topology.RoleRelay)
	}
	topo.SetRole(11, topology.RoleEndpoint)
	topo.SetRole(12, topology.RoleEndpoint)
	return topo
}

// degrade records sent successes and drops for every node in ids
func degrade(topo *topology.Topology, ids []topology.NodeID, sent, dropped int) {
	for i := 0; i < sent; i++ {
		topo.UpdateNodeHistory(ids, false)
	}
	for i := 0; i < dropped; i++ {
		topo.UpdateNodeHistory(ids, true)
	}
}

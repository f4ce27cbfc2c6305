package routing

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

func TestRouter_Defaults(t *testing.T) {
	r := NewRouter(twoChains(t))
	if r.Strategy() != StrategyReliable {
		t.Errorf("Strategy() = %v, want reliable", r.Strategy())
	}
	if got := r.Route(11, 12); !slices.Equal(got, []topology.NodeID{11, 1, 2, 3, 12}) {
		t.Errorf("Route() = %v", got)
	}
	// no metrics configured must be safe
	r.RecordDelivery([]topology.NodeID{11, 1}, true)
	r.SyncMetrics()
}

func TestRouter_ReroutesAfterDrops(t *testing.T) {
	topo := twoChains(t)
	r := NewRouter(topo)

	h := r.Header(11, 12)
	for i := 0; i < 3; i++ {
		r.RecordDelivery(h.Hops, false)
	}
	for i := 0; i < 7; i++ {
		r.RecordDelivery(h.Hops, true)
	}

	if got := r.Route(11, 12); !slices.Equal(got, []topology.NodeID{11, 4, 5, 6, 12}) {
		t.Errorf("Route() after drops = %v, want [11 4 5 6 12]", got)
	}
	if topo.History().Get(2).PacketsDropped != 7 {
		t.Errorf("history for 2 = %+v", topo.History().Get(2))
	}
}

func TestRouter_BFS(t *testing.T) {
	topo := twoChains(t)
	degrade(topo, []topology.NodeID{1, 2, 3}, 1, 9)

	r := NewRouter(topo, WithStrategy(StrategyBFS))
	if got := r.Route(11, 12); !slices.Equal(got, []topology.NodeID{11, 1, 2, 3, 12}) {
		t.Errorf("bfs Route() = %v, want hop-minimal lowest-id chain", got)
	}
}

func TestRouter_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	topo := twoChains(t)
	r := NewRouter(topo, WithMetrics(reg))

	r.Route(11, 12)
	r.Route(11, 99)
	r.RecordDelivery([]topology.NodeID{11, 1, 2}, true)
	r.SyncMetrics()

	counter := func(labels ...string) float64 {
		t.Helper()
		var m dto.Metric
		if err := r.metrics.RoutesTotal.WithLabelValues(labels...).Write(&m); err != nil {
			t.Fatalf("Failed to write metric: %v", err)
		}
		return m.Counter.GetValue()
	}
	if v := counter("reliable", metrics.ResultFound); v != 1 {
		t.Errorf("found = %v, want 1", v)
	}
	if v := counter("reliable", metrics.ResultNoRoute); v != 1 {
		t.Errorf("no_route = %v, want 1", v)
	}

	var m dto.Metric
	if err := reg.HistoryUpdatesHops.Write(&m); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if v := m.Counter.GetValue(); v != 3 {
		t.Errorf("history updates = %v, want 3", v)
	}

	m.Reset()
	if err := reg.TopologyNodes.Write(&m); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if v := m.Gauge.GetValue(); v != 8 {
		t.Errorf("topology nodes = %v, want 8", v)
	}
}

func TestRouter_MetricsSelfRoute(t *testing.T) {
	reg := metrics.NewRegistry()
	r := NewRouter(twoChains(t), WithMetrics(reg))

	if got := r.Route(3, 3); !slices.Equal(got, []topology.NodeID{3}) {
		t.Fatalf("Route(3, 3) = %v, want [3]", got)
	}

	for result, want := range map[string]float64{
		metrics.ResultFound:   1,
		metrics.ResultNoRoute: 0,
	} {
		var m dto.Metric
		if err := reg.RoutesTotal.WithLabelValues("reliable", result).Write(&m); err != nil {
			t.Fatalf("Failed to write metric: %v", err)
		}
		if v := m.Counter.GetValue(); v != want {
			t.Errorf("%s = %v, want %v", result, v, want)
		}
	}
}

func TestRouter_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	r := NewRouter(twoChains(t), WithLogger(logger), WithStrategy(StrategyBFS))
	r.Route(11, 12)

	out := buf.String()
	if !strings.Contains(out, `"msg":"route computed"`) {
		t.Errorf("missing route log line: %s", out)
	}
	if !strings.Contains(out, `"component":"router"`) {
		t.Errorf("missing component field: %s", out)
	}
	if !strings.Contains(out, `"strategy":"bfs"`) {
		t.Errorf("missing strategy field: %s", out)
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTopologyMetrics() {
	r.TopologyNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "topology_nodes",
			Help:      "Number of nodes in the local topology view",
		},
	)

	r.TopologyEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "topology_edges",
			Help:      "Number of undirected links in the local topology view",
		},
	)

	r.DeliveriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "deliveries_total",
			Help:      "Fragment delivery outcomes fed into the node history",
		},
		[]string{"outcome"},
	)

	r.HistoryUpdatesHops = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "history_updates_total",
			Help:      "Per-node history counter increments",
		},
	)
}

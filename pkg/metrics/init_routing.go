package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoutingMetrics() {
	r.RoutesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "routes_total",
			Help:      "Total number of path searches by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	r.RouteHops = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "route_hops",
			Help:      "Number of links in computed routes",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
		[]string{"strategy"},
	)

	r.RouteCost = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "route_cost",
			Help:      "Accumulated drop-rate cost of computed routes",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 400},
		},
	)

	r.RouteComputation = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "route_computation_seconds",
			Help:      "Time spent searching for a route",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		},
		[]string{"strategy"},
	)
}

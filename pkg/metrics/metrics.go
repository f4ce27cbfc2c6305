// Package metrics exposes Prometheus instrumentation for routing, topology
// maintenance and fragment reassembly.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	ResultFound   = "found"
	ResultNoRoute = "no_route"

	OutcomeDelivered = "delivered"
	OutcomeDropped   = "dropped"

	DirectionOut = "out"
	DirectionIn  = "in"
)

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initRoutingMetrics()
	r.initTopologyMetrics()
	r.initFragmentMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordRoute records one path search. found is false when no route exists;
// hops is the number of links in the path, zero for a route from a node to
// itself.
func (r *Registry) RecordRoute(strategy string, found bool, hops int, cost uint64, duration time.Duration) {
	result := ResultNoRoute
	if found {
		result = ResultFound
	}
	r.RoutesTotal.WithLabelValues(strategy, result).Inc()
	r.RouteComputation.WithLabelValues(strategy).Observe(duration.Seconds())
	if found {
		r.RouteHops.WithLabelValues(strategy).Observe(float64(hops))
		r.RouteCost.Observe(float64(cost))
	}
}

// RecordDelivery records the outcome of one fragment over a path segment
func (r *Registry) RecordDelivery(dropped bool, hops int) {
	outcome := OutcomeDelivered
	if dropped {
		outcome = OutcomeDropped
	}
	r.DeliveriesTotal.WithLabelValues(outcome).Inc()
	r.HistoryUpdatesHops.Add(float64(hops))
}

// SetTopologySize updates the node and edge gauges
func (r *Registry) SetTopologySize(nodes, edges int) {
	r.TopologyNodes.Set(float64(nodes))
	r.TopologyEdges.Set(float64(edges))
}

// RecordFragments counts fragments produced (DirectionOut) or accepted (DirectionIn)
func (r *Registry) RecordFragments(direction string, n int) {
	r.FragmentsTotal.WithLabelValues(direction).Add(float64(n))
}

// RecordSessionCompleted records a reassembled payload
func (r *Registry) RecordSessionCompleted(size int) {
	r.SessionsCompleted.Inc()
	r.ReassembledBytes.Observe(float64(size))
}

// RecordSessionsExpired counts buffers dropped by the session TTL
func (r *Registry) RecordSessionsExpired(n int) {
	r.SessionsExpired.Add(float64(n))
}

// SetSessionsPending updates the number of incomplete reassembly buffers
func (r *Registry) SetSessionsPending(n int) {
	r.SessionsPending.Set(float64(n))
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name
const Namespace = "meshroute"

// Registry holds all metrics for a participant
type Registry struct {
	// Routing Metrics
	RoutesTotal      *prometheus.CounterVec
	RouteHops        *prometheus.HistogramVec
	RouteCost        prometheus.Histogram
	RouteComputation *prometheus.HistogramVec

	// Topology Metrics
	TopologyNodes      prometheus.Gauge
	TopologyEdges      prometheus.Gauge
	DeliveriesTotal    *prometheus.CounterVec
	HistoryUpdatesHops prometheus.Counter

	// Fragment Metrics
	FragmentsTotal     *prometheus.CounterVec
	DuplicateFragments prometheus.Counter
	RejectedFragments  prometheus.Counter
	SessionsCompleted  prometheus.Counter
	SessionsExpired    prometheus.Counter
	SessionsPending    prometheus.Gauge
	ReassembledBytes   prometheus.Histogram

	registry *prometheus.Registry
}

package routing

import (
	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// Router binds a topology to a search strategy and reports what it does to a
// logger and a metrics registry. Like the topology it wraps, a Router is not
// safe for concurrent use.
type Router struct {
	topo     *topology.Topology
	strategy Strategy
	logger   logging.Logger
	metrics  *metrics.Registry
}

// Option configures a Router
type Option func(*Router)

// WithStrategy selects the search used by Route and Header
func WithStrategy(s Strategy) Option {
	return func(r *Router) { r.strategy = s }
}

// WithLogger sets the logger; the default discards output
func WithLogger(l logging.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l.With(logging.Component("router"))
		}
	}
}

// WithMetrics sets the metrics registry; nil disables instrumentation
func WithMetrics(m *metrics.Registry) Option {
	return func(r *Router) { r.metrics = m }
}

// NewRouter creates a router over topo
func NewRouter(topo *topology.Topology, opts ...Option) *Router {
	r := &Router{
		topo:     topo,
		strategy: StrategyReliable,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Strategy returns the configured search strategy
func (r *Router) Strategy() Strategy {
	return r.strategy
}

// Topology returns the wrapped topology
func (r *Router) Topology() *topology.Topology {
	return r.topo
}

// Route computes a path from src to dst; nil means no route
func (r *Router) Route(src, dst topology.NodeID) []topology.NodeID {
	op := logging.StartTimer(r.logger, "route computed",
		logging.Strategy(r.strategy.String()),
		logging.Uint64("src", uint64(src)),
		logging.Uint64("dst", uint64(dst)),
	)

	path := Find(r.strategy, r.topo, r.topo.History(), src, dst)
	cost := Cost(r.topo.History(), path)

	if len(path) == 0 {
		r.logger.Debug("no route", logging.Uint64("src", uint64(src)), logging.Uint64("dst", uint64(dst)))
	}
	elapsed := op.End(logging.Hops(path), logging.Uint64("cost", cost))

	if r.metrics != nil {
		found := len(path) > 0
		hops := 0
		if found {
			hops = len(path) - 1
		}
		r.metrics.RecordRoute(r.strategy.String(), found, hops, cost, elapsed)
	}
	return path
}

// Header computes a route and wraps it as a source-routing header
func (r *Router) Header(src, dst topology.NodeID) RoutingHeader {
	return NewHeader(r.Route(src, dst))
}

// RecordDelivery feeds the outcome of one fragment over hops into the node
// history. Only fragments should be reported; control traffic is not subject
// to drops and would skew the estimate.
func (r *Router) RecordDelivery(hops []topology.NodeID, dropped bool) {
	r.topo.UpdateNodeHistory(hops, dropped)
	if dropped {
		r.logger.Debug("fragment dropped", logging.Hops(hops))
	}
	if r.metrics != nil {
		r.metrics.RecordDelivery(dropped, len(hops))
	}
}

// SyncMetrics publishes the current topology size
func (r *Router) SyncMetrics() {
	if r.metrics == nil {
		return
	}
	stats := r.topo.Statistics()
	r.metrics.SetTopologySize(stats.NodeCount, stats.EdgeCount)
}

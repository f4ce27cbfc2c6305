// Package node bundles the routing and fragmentation engines of one network
// participant behind a mutex so a transport can drive it from several
// goroutines.
package node

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-meshroute/pkg/config"
	"github.com/dd0wney/cluso-meshroute/pkg/fragment"
	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/message"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
	"github.com/dd0wney/cluso-meshroute/pkg/routing"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// ErrNoRoute is returned by Send when the destination cannot be reached
var ErrNoRoute = errors.New("no route to destination")

// ErrNilMessage is returned by Send when there is no message to send
var ErrNilMessage = errors.New("nil message")

// Outbound is a message ready for the transport: the source route and the
// fragments of one session.
type Outbound struct {
	SessionID uint64
	Header    routing.RoutingHeader
	Fragments []fragment.Fragment
}

// Node is one participant
type Node struct {
	mu sync.Mutex

	id   topology.NodeID
	kind string

	topo         *topology.Topology
	router       *routing.Router
	disassembler *fragment.Disassembler
	assembler    *fragment.Assembler

	logger  logging.Logger
	metrics *metrics.Registry
}

type options struct {
	logger     logging.Logger
	metrics    *metrics.Registry
	strategy   routing.Strategy
	sessionTTL time.Duration
}

// Option configures a Node
type Option func(*options)

// WithLogger sets the parent logger; the node tags it with its kind and id
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics shares a metrics registry with the node's engines
func WithMetrics(m *metrics.Registry) Option {
	return func(o *options) { o.metrics = m }
}

// WithStrategy selects the path search
func WithStrategy(s routing.Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithSessionTTL enables expiry of incomplete sessions
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *options) { o.sessionTTL = ttl }
}

// New creates a participant over topo. The node is added to topo if absent.
func New(id topology.NodeID, kind string, topo *topology.Topology, opts ...Option) *Node {
	o := options{logger: logging.NewNopLogger(), strategy: routing.StrategyReliable}
	for _, opt := range opts {
		opt(&o)
	}

	if topo == nil {
		topo = topology.New()
	}
	if topo.AddNode(id) {
		topo.SetLabel(id, kind)
		topo.SetRole(id, config.KindRole(kind))
	}

	logger := logging.ForNode(o.logger, kind, uint8(id))
	return &Node{
		id:   id,
		kind: kind,
		topo: topo,
		router: routing.NewRouter(topo,
			routing.WithStrategy(o.strategy),
			routing.WithLogger(logger),
			routing.WithMetrics(o.metrics),
		),
		disassembler: fragment.NewDisassembler(
			fragment.WithDisassemblerLogger(logger),
			fragment.WithDisassemblerMetrics(o.metrics),
		),
		assembler: fragment.NewAssembler(
			fragment.WithSessionTTL(o.sessionTTL),
			fragment.WithAssemblerLogger(logger),
			fragment.WithAssemblerMetrics(o.metrics),
		),
		logger:  logger,
		metrics: o.metrics,
	}
}

// FromConfig creates the participant described by cfg. Options given here
// override the configured strategy and TTL.
func FromConfig(cfg *config.Config, opts ...Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	topo, err := cfg.BuildTopology()
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithStrategy(cfg.Strategy()),
		WithSessionTTL(cfg.Assembler.SessionTTL),
	}
	return New(topology.NodeID(cfg.Node.ID), cfg.Node.Kind, topo, append(base, opts...)...), nil
}

// ID returns the node id
func (n *Node) ID() topology.NodeID {
	return n.id
}

// Kind returns the participant kind, e.g. "chat-client"
func (n *Node) Kind() string {
	return n.kind
}

// Route computes the current path to dst
func (n *Node) Route(dst topology.NodeID) []topology.NodeID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.router.Route(n.id, dst)
}

// Send prepares msg for dst: it stamps the source and session, encodes the
// envelope and splits it into fragments along a freshly computed route.
// A zero msg.SessionID is replaced by a new random one.
func (n *Node) Send(dst topology.NodeID, msg *message.Message) (Outbound, error) {
	if msg == nil {
		return Outbound{}, fmt.Errorf("send to %d: %w", dst, ErrNilMessage)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	header := n.router.Header(n.id, dst)
	if header.Empty() {
		n.logger.Warn("no route", logging.Peer(uint8(dst)))
		return Outbound{}, fmt.Errorf("send to %d: %w", dst, ErrNoRoute)
	}

	if msg.SessionID == 0 {
		msg.SessionID = fragment.NewSessionID()
	}
	msg.SourceID = uint8(n.id)

	data, err := message.Encode(msg)
	if err != nil {
		return Outbound{}, fmt.Errorf("send to %d: %w", dst, err)
	}

	out := Outbound{
		SessionID: msg.SessionID,
		Header:    header,
		Fragments: n.disassembler.Disassemble(data, msg.SessionID),
	}
	n.logger.Info("message queued",
		logging.Peer(uint8(dst)),
		logging.Session(out.SessionID),
		logging.String("kind", msg.Kind.String()),
		logging.Hops(header.Hops),
		logging.Count(len(out.Fragments)),
	)
	return out, nil
}

// Receive buffers one fragment. It returns the decoded message once the
// session is complete and nil before that.
func (n *Node) Receive(sessionID uint64, f fragment.Fragment) (*message.Message, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	payload, done, err := n.assembler.AddFragment(f, sessionID)
	if err != nil || !done {
		return nil, err
	}

	msg, err := message.Decode(payload)
	if err != nil {
		n.logger.Error("undecodable message", logging.Session(sessionID), logging.Error(err))
		return nil, fmt.Errorf("session %d: %w", sessionID, err)
	}
	n.logger.Info("message received",
		logging.Session(sessionID),
		logging.Peer(msg.SourceID),
		logging.String("kind", msg.Kind.String()),
	)
	return msg, nil
}

// ReportDelivery feeds a fragment's outcome over hops into the history
func (n *Node) ReportDelivery(hops []topology.NodeID, dropped bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.router.RecordDelivery(hops, dropped)
}

// Topology runs fn with exclusive access to the node's topology
func (n *Node) Topology(fn func(t *topology.Topology)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fn(n.topo)
	n.router.SyncMetrics()
}

// Snapshot copies the current topology
func (n *Node) Snapshot() topology.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.topo.Snapshot()
}

// ExpireSessions drops incomplete sessions idle past the configured TTL
func (n *Node) ExpireSessions(now time.Time) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.assembler.Expire(now)
}

// AssemblerStats reports reassembly counters
func (n *Node) AssemblerStats() fragment.Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.assembler.Stats()
}

// Package config loads a participant's YAML configuration: its identity,
// logging and routing preferences, reassembly limits, and the topology it
// starts from.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/routing"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

// Flood discovery timings, for callers that own the discovery timers
const (
	FloodRequestTimeout  = 500 * time.Millisecond
	FloodResponseTimeout = 500 * time.Millisecond
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// Config is the root of a configuration file
type Config struct {
	Node      NodeConfig      `yaml:"node"`
	Logging   LoggingConfig   `yaml:"logging"`
	Routing   RoutingConfig   `yaml:"routing"`
	Assembler AssemblerConfig `yaml:"assembler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Topology  TopologyConfig  `yaml:"topology"`
}

// NodeConfig identifies the local participant
type NodeConfig struct {
	ID   uint8  `yaml:"id"`
	Kind string `yaml:"kind" validate:"required,oneof=chat-client web-browser chat-server text-server media-server relay"`
}

// LoggingConfig selects the log level
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
}

// RoutingConfig selects the path search
type RoutingConfig struct {
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=reliable dijkstra pdr bfs hops shortest"`
}

// AssemblerConfig bounds reassembly buffers. A zero SessionTTL keeps
// incomplete sessions until they are discarded explicitly.
type AssemblerConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl" validate:"gte=0s"`
}

// MetricsConfig sets where Prometheus metrics are served; empty disables it
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// TopologyConfig is the initial view of the network
type TopologyConfig struct {
	Nodes []TopologyNode `yaml:"nodes" validate:"dive"`
	Edges []TopologyEdge `yaml:"edges" validate:"dive"`
}

// TopologyNode declares one node
type TopologyNode struct {
	ID    uint8  `yaml:"id"`
	Label string `yaml:"label" validate:"max=64"`
	Role  string `yaml:"role" validate:"omitempty,oneof=relay drone endpoint client server"`
}

// TopologyEdge declares an undirected link
type TopologyEdge struct {
	A uint8 `yaml:"a"`
	B uint8 `yaml:"b"`
}

// Default returns a configuration for a lone chat client
func Default() *Config {
	return &Config{
		Node:    NodeConfig{ID: 1, Kind: "chat-client"},
		Logging: LoggingConfig{Level: "info"},
		Routing: RoutingConfig{Strategy: routing.StrategyReliable.String()},
	}
}

// Load reads and validates the file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and the cross-references between nodes and
// edges. All problems are reported together.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	var errs []error
	declared := make(map[uint8]bool, len(c.Topology.Nodes))
	for _, n := range c.Topology.Nodes {
		if declared[n.ID] {
			errs = append(errs, fmt.Errorf("topology.nodes: duplicate id %d", n.ID))
		}
		declared[n.ID] = true
	}
	for _, e := range c.Topology.Edges {
		switch {
		case e.A == e.B:
			errs = append(errs, fmt.Errorf("topology.edges: self loop on %d", e.A))
		case !declared[e.A] || !declared[e.B]:
			errs = append(errs, fmt.Errorf("topology.edges: %d-%d references an undeclared node", e.A, e.B))
		}
	}
	if len(c.Topology.Nodes) > 0 && !declared[c.Node.ID] {
		errs = append(errs, fmt.Errorf("node.id %d is not part of the topology", c.Node.ID))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// formatValidationError turns validator output into one readable error per field
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			errs = append(errs, fmt.Errorf("%s: is required", e.Namespace()))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: %q must be one of [%s]", e.Namespace(), e.Value(), e.Param()))
		default:
			errs = append(errs, fmt.Errorf("%s: failed %s=%s (got %v)", e.Namespace(), e.Tag(), e.Param(), e.Value()))
		}
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// LogLevel returns the configured level, INFO when unset
func (c *Config) LogLevel() logging.Level {
	if c.Logging.Level == "" {
		return logging.InfoLevel
	}
	return logging.ParseLevel(c.Logging.Level)
}

// Strategy returns the configured routing strategy
func (c *Config) Strategy() routing.Strategy {
	s, err := routing.ParseStrategy(c.Routing.Strategy)
	if err != nil {
		return routing.StrategyReliable
	}
	return s
}

// BuildTopology creates the initial topology. Node kinds in labels are
// kept, and roles default from the label when none is given.
func (c *Config) BuildTopology() (*topology.Topology, error) {
	snap := topology.Snapshot{
		Nodes: make([]topology.NodeSpec, 0, len(c.Topology.Nodes)),
		Edges: make([]topology.Edge, 0, len(c.Topology.Edges)),
	}
	for _, n := range c.Topology.Nodes {
		snap.Nodes = append(snap.Nodes, topology.NodeSpec{
			ID:    topology.NodeID(n.ID),
			Label: n.Label,
			Role:  roleOf(n),
		})
	}
	for _, e := range c.Topology.Edges {
		snap.Edges = append(snap.Edges, topology.NewEdge(topology.NodeID(e.A), topology.NodeID(e.B)))
	}

	topo, err := topology.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}
	if !topo.HasNode(topology.NodeID(c.Node.ID)) {
		topo.AddNode(topology.NodeID(c.Node.ID))
		topo.SetLabel(topology.NodeID(c.Node.ID), c.Node.Kind)
		topo.SetRole(topology.NodeID(c.Node.ID), KindRole(c.Node.Kind))
	}
	return topo, nil
}

func roleOf(n TopologyNode) topology.Role {
	if n.Role != "" {
		return topology.ParseRole(n.Role)
	}
	return KindRole(n.Label)
}

// KindRole maps a participant kind to its routing role. Relays forward
// traffic; clients and servers only terminate it.
func KindRole(kind string) topology.Role {
	switch kind {
	case "relay", "drone":
		return topology.RoleRelay
	case "chat-client", "web-browser", "chat-server", "text-server", "media-server":
		return topology.RoleEndpoint
	}
	return topology.RoleUnknown
}

// Command meshroute computes a source route through a configured topology,
// fragments a chat message along it and reassembles it at the destination.
//
// Usage:
//
//	meshroute -from 11 -to 12 -payload "hello" -drops 1,2
//	meshroute -config net.yaml -strategy bfs -metrics-addr :9464
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-meshroute/pkg/config"
	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/message"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
	"github.com/dd0wney/cluso-meshroute/pkg/node"
	"github.com/dd0wney/cluso-meshroute/pkg/routing"
	"github.com/dd0wney/cluso-meshroute/pkg/topology"
)

//go:embed demo.yaml
var demoConfig []byte

// drops recorded against every node named in -drops, on top of one send;
// enough to price the relay well above any clean detour
const lossySamples = 9

type options struct {
	configPath  string
	from        uint
	fromSet     bool
	to          uint
	strategy    string
	payload     string
	drops       string
	metricsAddr string
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("meshroute", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file (built-in demo network when empty)")
	fs.UintVar(&opts.from, "from", 0, "source node id (defaults to node.id from the config)")
	fs.UintVar(&opts.to, "to", 12, "destination node id")
	fs.StringVar(&opts.strategy, "strategy", "", "routing strategy: reliable or bfs (overrides the config)")
	fs.StringVar(&opts.payload, "payload", "hello over the mesh", "chat message to send")
	fs.StringVar(&opts.drops, "drops", "", "comma-separated node ids to mark as lossy before routing")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address and wait for a signal")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides the config)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	// node 0 is a valid source, so presence decides, not the value
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "from" {
			opts.fromSet = true
		}
	})
	if opts.from > 255 || opts.to > 255 {
		return opts, fmt.Errorf("node ids must fit in a byte")
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath == "" {
		cfg, err = config.Parse(demoConfig)
	} else {
		cfg, err = config.Load(opts.configPath)
	}
	if err != nil {
		return nil, err
	}

	if opts.strategy != "" {
		if _, err := routing.ParseStrategy(opts.strategy); err != nil {
			return nil, err
		}
		cfg.Routing.Strategy = opts.strategy
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.fromSet {
		cfg.Node.ID = uint8(opts.from)
		if kind := kindOf(cfg, cfg.Node.ID); kind != "" {
			cfg.Node.Kind = kind
		}
	}
	return cfg, cfg.Validate()
}

// kindOf returns the label of id when it names a known participant kind
func kindOf(cfg *config.Config, id uint8) string {
	for _, n := range cfg.Topology.Nodes {
		if n.ID == id && config.KindRole(n.Label) != topology.RoleUnknown {
			return n.Label
		}
	}
	return ""
}

func parseDrops(s string) ([]topology.NodeID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []topology.NodeID
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("-drops: %q is not a node id", field)
		}
		ids = append(ids, topology.NodeID(v))
	}
	return ids, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	lossy, err := parseDrops(opts.drops)
	if err != nil {
		return err
	}

	logger := logging.NewJSONLogger(stderr, cfg.LogLevel())
	reg := metrics.NewRegistry()

	sender, err := node.FromConfig(cfg, node.WithLogger(logger), node.WithMetrics(reg))
	if err != nil {
		return err
	}
	dst := topology.NodeID(opts.to)

	for _, id := range lossy {
		sender.ReportDelivery([]topology.NodeID{id}, false)
		for i := 0; i < lossySamples; i++ {
			sender.ReportDelivery([]topology.NodeID{id}, true)
		}
	}

	msg, err := message.New(uint8(sender.ID()), 0, message.KindChatRequest, message.ChatRequest{
		Op:      message.ChatSend,
		From:    uint8(sender.ID()),
		To:      uint8(dst),
		Message: opts.payload,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, titleStyle.Render(fmt.Sprintf("meshroute %d → %d (%s)", sender.ID(), dst, cfg.Strategy())))

	out, err := sender.Send(dst, msg)
	if err != nil {
		fmt.Fprintln(stdout, errorStyle.Render(err.Error()))
		return serveMetrics(ctx, cfg.Metrics.Addr, reg, logger)
	}

	sender.Topology(func(t *topology.Topology) {
		fmt.Fprintln(stdout, renderRoute(out.Header.Hops, t))
		fmt.Fprintf(stdout, "cost %d over %d hops\n", routing.Cost(t.History(), out.Header.Hops), len(out.Header.Hops)-1)
	})
	fmt.Fprintln(stdout, renderFragments(out.SessionID, out.Fragments))

	receiver := node.New(dst, kindOf(cfg, uint8(dst)), nil, node.WithLogger(logger), node.WithMetrics(reg))
	var received *message.Message
	for _, f := range out.Fragments {
		if received, err = receiver.Receive(out.SessionID, f); err != nil {
			return err
		}
	}
	if received == nil {
		return fmt.Errorf("session %d did not complete", out.SessionID)
	}

	var body message.ChatRequest
	if err := received.ContentAs(&body); err != nil {
		return err
	}
	fmt.Fprintln(stdout, successStyle.Render(fmt.Sprintf("delivered to %d: %q", dst, body.Message)))

	return serveMetrics(ctx, cfg.Metrics.Addr, reg, logger)
}

// serveMetrics exposes reg on addr until ctx is done. An empty addr returns
// immediately.
func serveMetrics(ctx context.Context, addr string, reg *metrics.Registry, logger logging.Logger) error {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

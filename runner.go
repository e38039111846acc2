package flowsmonitor

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/theoremus-urban-solutions/flows-rt-monitor/config"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/flowsrt"
	"github.com/theoremus-urban-solutions/flows-rt-monitor/monitor"
)

const shutdownTimeout = 10 * time.Second

// Runner monitors every configured endpoint until each loop finishes or
// the context is cancelled.
type Runner struct {
	cfg        *config.AppConfig
	logger     *slog.Logger
	registry   *prometheus.Registry
	metrics    *Metrics
	board      *StatusBoard
	httpClient *http.Client
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRegistry registers metrics with reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) RunnerOption {
	return func(r *Runner) { r.registry = reg }
}

// WithFeedHTTPClient sets the HTTP client used for every endpoint.
func WithFeedHTTPClient(hc *http.Client) RunnerOption {
	return func(r *Runner) { r.httpClient = hc }
}

// NewRunner validates cfg. A *config.ConfigError is returned when the
// configuration cannot be used.
func NewRunner(cfg *config.AppConfig, logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{cfg: cfg, logger: logger, board: NewStatusBoard()}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = prometheus.NewRegistry()
	}
	r.metrics = NewMetrics(r.registry)
	return r, nil
}

// Board returns the status board shared by all loops.
func (r *Runner) Board() *StatusBoard { return r.board }

// Metrics returns the Prometheus collectors fed by all loops.
func (r *Runner) Metrics() *Metrics { return r.metrics }

// Run builds one loop per endpoint and runs them concurrently. Setup
// failures are returned before any loop starts. Summaries are returned in
// endpoint order.
func (r *Runner) Run(ctx context.Context) ([]monitor.Summary, error) {
	loops, err := r.buildLoops()
	if err != nil {
		return nil, err
	}

	var status *StatusServer
	if addr := r.cfg.Server.Addr; addr != "" {
		status = NewStatusServer(addr, r.board, r.registry, r.logger)
		if err := status.Start(); err != nil {
			return nil, err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := status.Shutdown(sctx); err != nil {
				r.logger.Error("status server shutdown failed", "error", err)
			}
		}()
	}

	summaries := make([]monitor.Summary, len(loops))
	g, gctx := errgroup.WithContext(ctx)
	for i, loop := range loops {
		g.Go(func() error {
			summary, err := loop.Run(gctx)
			summaries[i] = summary
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return summaries, err
	}
	return summaries, nil
}

// buildLoops only validates and prepares directories; no log file exists
// until a loop runs, so a failure here leaves nothing to clean up.
func (r *Runner) buildLoops() ([]*monitor.Loop, error) {
	cfg := r.cfg
	timeout := time.Duration(cfg.API.TimeoutMS) * time.Millisecond
	recorder := monitor.Recorders(r.metrics, r.board)

	loops := make([]*monitor.Loop, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		opts := []flowsrt.ClientOption{
			flowsrt.WithUserAgent(cfg.API.UserAgent),
			flowsrt.WithLogger(r.logger),
			flowsrt.WithBreaker(flowsrt.BreakerSettings{
				Name:                   ep.Name,
				MaxConsecutiveFailures: cfg.Breaker.MaxConsecutiveFailures,
				OpenTimeout:            time.Duration(cfg.Breaker.OpenTimeoutMS) * time.Millisecond,
			}),
		}
		if r.httpClient != nil {
			opts = append(opts, flowsrt.WithHTTPClient(r.httpClient))
		}
		client := flowsrt.NewClient(cfg.API.Key, timeout, opts...)

		outputDir := cfg.Monitor.OutputDir
		if len(cfg.Endpoints) > 1 {
			outputDir = filepath.Join(outputDir, ep.Name)
		}

		loop, err := monitor.NewLoop(monitor.LoopConfig{
			Endpoint:      ep.Name,
			Source:        client.Endpoint(ep.URL),
			OutputDir:     outputDir,
			MaxIterations: cfg.Monitor.MaxIterations,
			Interval:      time.Duration(cfg.Monitor.IntervalSeconds) * time.Second,
			SaveSnapshots: cfg.Monitor.SaveSnapshots,
			Compression:   monitor.Compression(cfg.Monitor.Compression),
			Logger:        r.logger,
			Recorder:      recorder,
		})
		if err != nil {
			return nil, err
		}
		r.board.Register(ep.Name, ep.URL)
		loops = append(loops, loop)
	}
	return loops, nil
}

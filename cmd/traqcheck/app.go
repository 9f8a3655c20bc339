package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/traqcheck/intake-client/internal/batch"
	"github.com/traqcheck/intake-client/internal/config"
	"github.com/traqcheck/intake-client/internal/coordinator"
	"github.com/traqcheck/intake-client/internal/events"
	"github.com/traqcheck/intake-client/internal/gateway"
	"github.com/traqcheck/intake-client/internal/platform/logger"
	"github.com/traqcheck/intake-client/internal/platform/metrics"
	"github.com/traqcheck/intake-client/internal/poller"
	"github.com/traqcheck/intake-client/internal/session"
	"github.com/traqcheck/intake-client/internal/viewstate"
)

// application holds the dependencies shared by every command.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	client      *gateway.Client
	emitter     *events.InMemoryEventEmitter
	registry    *prometheus.Registry
	pollMetrics *metrics.PollMetrics
	out         io.Writer

	metricsWG     sync.WaitGroup
	metricsCancel context.CancelFunc
}

// globalOptions are the persistent flags of the root command.
type globalOptions struct {
	configPath string
	baseURL    string
	logLevel   string
}

// initializeApp loads configuration, applies flag overrides and builds the
// shared dependencies.
func initializeApp(opts globalOptions, out, logOut io.Writer) (*application, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	log, err := logger.New(logOut, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	slog.SetDefault(log)

	client, err := gateway.NewClient(cfg.API, log, gateway.WithHTTPClient(newHTTPClient(cfg)))
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	pollMetrics, err := metrics.NewPollMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	log.Debug("client configuration loaded",
		"base_url", client.BaseURL(),
		"poll_interval", cfg.Poll.Interval,
		"metrics_enabled", cfg.Metrics.Addr != "")

	return &application{
		config:      cfg,
		logger:      log,
		client:      client,
		emitter:     events.NewInMemoryEventEmitter(log),
		registry:    registry,
		pollMetrics: pollMetrics,
		out:         out,
	}, nil
}

// newHTTPClient keeps an idle connection per batch worker; the default
// transport keeps two per host.
func newHTTPClient(cfg *config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.Batch.Workers + 1
	return &http.Client{
		Timeout:   cfg.API.Timeout,
		Transport: transport,
	}
}

func (app *application) pollOptions() []poller.Option {
	return []poller.Option{
		poller.WithInterval(app.config.Poll.Interval),
		poller.WithMetrics(app.pollMetrics),
	}
}

// newSession opens a view instance whose changes are rendered to out.
func (app *application) newSession() *session.Session {
	return session.New(app.client, app.emitter, app.logger, app.pollOptions()...)
}

// renderProgress prints snapshot, preview and poll-end events to out until
// the returned func is called.
func (app *application) renderProgress() (stop func()) {
	return app.emitter.RegisterHandler(newProgressRenderer(app.out),
		events.KindSnapshotReplaced,
		events.KindPreviewChanged,
		events.KindPollEnded)
}

// sessionFactory opens silent sessions for batch workers, whose output is
// printed as a table at the end instead.
func (app *application) sessionFactory() batch.SessionFactory {
	return func() batch.Session {
		return session.New(app.client, nil, app.logger, app.pollOptions()...)
	}
}

// newCoordinator runs one-shot actions against a fresh view.
func (app *application) newCoordinator() (*coordinator.Coordinator, *viewstate.State) {
	view := viewstate.New(app.emitter, app.logger)
	return coordinator.New(app.client, view, app.logger), view
}

// startMetrics serves the registry when metrics.addr is set, until ctx ends
// or stopMetrics is called.
func (app *application) startMetrics(ctx context.Context) {
	addr := app.config.Metrics.Addr
	if addr == "" {
		return
	}

	ctx, app.metricsCancel = context.WithCancel(ctx)
	handler := metrics.NewRouter(app.registry, app.logger)
	app.metricsWG.Add(1)
	go func() {
		defer app.metricsWG.Done()
		if err := metrics.Serve(ctx, addr, handler, app.logger); err != nil {
			app.logger.Error("metrics server failed", "error", err)
		}
	}()
}

// stopMetrics shuts the metrics server down and waits for it.
func (app *application) stopMetrics() {
	if app.metricsCancel != nil {
		app.metricsCancel()
	}
	app.metricsWG.Wait()
}

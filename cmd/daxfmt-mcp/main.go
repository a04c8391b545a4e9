// Command daxfmt-mcp is an MCP gateway to the DAX formatting service. It
// speaks newline-delimited JSON-RPC on stdin/stdout and forwards formatting
// requests to the remote service; all diagnostics go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tabulartools/daxfmt-mcp/pkg/config"
	"github.com/tabulartools/daxfmt-mcp/pkg/daxfmt"
	"github.com/tabulartools/daxfmt-mcp/pkg/formatter"
	"github.com/tabulartools/daxfmt-mcp/pkg/logging"
	"github.com/tabulartools/daxfmt-mcp/pkg/observability"
	"github.com/tabulartools/daxfmt-mcp/pkg/server"
	"github.com/tabulartools/daxfmt-mcp/pkg/transport"
)

const (
	serverName      = "daxfmt-mcp"
	shutdownTimeout = 5 * time.Second
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", serverName, version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serverName, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		logger.Info("shutting down on signal", logging.String("signal", sig.String()))
		cancel()
	}()

	metrics, err := newMetrics(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("metrics shutdown failed")
		}
	}()

	tracing, err := newTracing(cfg)
	if err != nil {
		return fmt.Errorf("create tracing provider: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("tracing shutdown failed")
		}
	}()

	client, err := formatter.NewClient(formatter.Config{
		BaseURL:       cfg.ServiceURL,
		Timeout:       cfg.RequestTimeout,
		CallerApp:     serverName,
		CallerVersion: version,
		Logger:        logger,
		Tracer:        tracing.Tracer(),
		Recorder:      metrics,
	})
	if err != nil {
		return fmt.Errorf("create formatter client: %w", err)
	}

	provider, err := daxfmt.NewProvider(client, logger)
	if err != nil {
		return fmt.Errorf("create tool provider: %w", err)
	}

	srv, err := server.New(provider,
		server.WithName(serverName),
		server.WithVersion(version),
		server.WithLogger(logger),
		server.WithMetrics(metrics),
		server.WithTracer(tracing.Tracer()),
	)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	stdio, err := transport.NewStdioTransport(srv, transport.Config{Logger: logger})
	if err != nil {
		return fmt.Errorf("create transport: %w", err)
	}

	logger.Info("gateway started",
		logging.String("version", version),
		logging.String("service_url", cfg.ServiceURL),
	)

	runErr := stdio.Start(ctx)
	if err := stdio.Stop(context.Background()); err != nil {
		logger.WithError(err).Warn("transport stop failed")
	}

	// Cancellation is the signal path, not a failure; EOF already returns nil.
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	logger.Info("gateway stopped")
	return nil
}

// newLogger builds the stderr logger from the configured level and format.
func newLogger(cfg *config.Config) logging.Logger {
	var fmtr logging.Formatter
	switch cfg.LogFormat {
	case config.LogFormatJSON:
		fmtr = logging.NewJSONFormatter()
	default:
		fmtr = logging.NewTextFormatter()
	}

	logger := logging.New(os.Stderr, fmtr)
	logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	return logger
}

// newMetrics returns the Prometheus provider with its scrape listener already
// bound, or the no-op provider when metrics are disabled. A port that cannot
// be bound fails startup rather than running without the endpoint.
func newMetrics(ctx context.Context, cfg *config.Config, logger logging.Logger) (observability.MetricsProvider, error) {
	if !cfg.MetricsEnabled {
		return observability.NewNopMetricsProvider(), nil
	}

	provider, err := observability.NewMetricsProvider(observability.MetricsConfig{
		ServiceName:    serverName,
		ServiceVersion: version,
		MetricsPort:    cfg.MetricsPort,
	})
	if err != nil {
		return nil, fmt.Errorf("create metrics provider: %w", err)
	}
	if err := provider.Start(ctx); err != nil {
		return nil, err
	}

	logger.Info("metrics listening", logging.String("addr", provider.Addr()))
	return provider, nil
}

// newTracing builds the tracing provider. Disabled tracing still gets a
// provider so spans exist everywhere; they just export nowhere.
func newTracing(cfg *config.Config) (*observability.TracingProvider, error) {
	exporter := observability.ExporterTypeNoop
	if cfg.TracingEnabled {
		exporter = observability.ExporterType(cfg.TracingExporter)
	}

	return observability.NewTracingProvider(observability.TracingConfig{
		ServiceName:    serverName,
		ServiceVersion: version,
		ExporterType:   exporter,
		Endpoint:       cfg.TracingEndpoint,
		Insecure:       cfg.TracingInsecure,
		SampleRate:     cfg.TracingSampleRate,
	})
}

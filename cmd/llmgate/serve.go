package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edgelab/llmgate/pkg/api"
	"github.com/edgelab/llmgate/pkg/config"
	"github.com/edgelab/llmgate/pkg/debug"
	"github.com/edgelab/llmgate/pkg/engine"
	"github.com/edgelab/llmgate/pkg/provider/ollama"
	"github.com/edgelab/llmgate/pkg/telemetry"
	transporthttp "github.com/edgelab/llmgate/pkg/transport/http"
)

var serveFlags struct {
	port     int
	logLevel string
	dryRun   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway HTTP server",
	Long: `Start the gateway with the resolved configuration. The server runs
until SIGINT or SIGTERM, then drains in-flight requests.

Examples:
  # Start with discovered config
  llmgate serve

  # Override the listen port
  llmgate serve --port 9000

  # Validate config without starting the server
  llmgate serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "override listen port")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveFlags.port > 0 {
		cfg.Server.Port = serveFlags.port
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}

	logCloser := debug.Init(cfg.Logging)
	defer logCloser.Close()

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg)
}

// serve wires the gateway from cfg and blocks until ctx is done.
func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Observability.Tracing, ServiceName, Version)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		// The serve context is already cancelled here.
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("flushing traces failed", "error", err)
		}
	}()

	prov, err := ollama.New(ollama.Config{
		BaseURL:         cfg.Backend.Endpoint,
		GenerateTimeout: cfg.Backend.GenerateTimeout,
		ListTimeout:     cfg.Backend.ListTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	defer prov.Close()

	eng, err := engine.New(prov, engine.Config{
		DefaultModel:       cfg.Defaults.Model,
		DefaultTemperature: cfg.Defaults.Temperature,
		DefaultMaxTokens:   cfg.Defaults.MaxTokens,
		BackendEndpoint:    cfg.Backend.Endpoint,
		ServiceName:        ServiceName,
		Version:            Version,
		Logger:             slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	srv := transporthttp.NewServer(eng, api.NewDocumentation(ServiceName, Version),
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithMetricsPath(metricsPath),
		transporthttp.WithLogger(slog.Default()),
	)

	slog.Info("gateway configured",
		"backend", cfg.Backend.Endpoint,
		"model", cfg.Defaults.Model,
		"port", cfg.Server.Port,
		"metrics", metricsPath != "",
		"tracing", cfg.Observability.Tracing.Enabled,
	)

	return srv.Run(ctx)
}

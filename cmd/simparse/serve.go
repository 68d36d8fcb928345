package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dorfbook/simparse/pkg/cli"
	"dorfbook/simparse/pkg/config"
	"dorfbook/simparse/pkg/history"
	"dorfbook/simparse/pkg/history/recorder"
	"dorfbook/simparse/pkg/history/retention"
	"dorfbook/simparse/pkg/history/storage"
	"dorfbook/simparse/pkg/library"
	"dorfbook/simparse/pkg/server"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/sim/validator"
	"dorfbook/simparse/pkg/telemetry/health"
	"dorfbook/simparse/pkg/telemetry/logging"
	"dorfbook/simparse/pkg/telemetry/metrics"
	"dorfbook/simparse/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simparse HTTP service",
	Long: `Start the simparse HTTP service with the specified configuration.

The service parses rule documents posted to /sim_parse, lints them on
/api/v1/lint, serves a watched rule library and records every parse in the
history store.

Examples:
  # Start with defaults
  simparse serve

  # Start with custom config
  simparse serve --config /etc/simparse/config.yaml

  # Override listen address
  simparse serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  simparse serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging, os.Stdout))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	out := cmd.OutOrStdout()
	if serveFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(cmd, cfg)

	ctx, stop := cli.SetupSignalHandlerContext(cmd.Context())
	defer stop()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)

	p := parser.NewParser().
		WithMaxSize(cfg.Parser.MaxFileSize).
		WithContextLines(cfg.Parser.ContextLines)

	deps := server.Dependencies{
		Parser:    p,
		Validator: validator.NewValidator().WithStrictMode(cfg.Parser.StrictLint),
		Metrics:   collector,
		Tracer:    tracer,
		Health:    checker,
		Logger:    logger,
		Build:     server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate},
	}

	if cfg.History.Enabled {
		store, rec, pruner, err := startHistory(ctx, cfg, collector)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()
		defer rec.Close()
		if pruner != nil {
			defer pruner.Stop()
		}

		checker.Register("history", store.Ping)
		deps.History = store
		deps.Recorder = rec
		fmt.Fprintf(out, "✓ History store initialized (%s)\n", cfg.History.Backend)
	}

	if cfg.Library.Enabled {
		lib := library.New(&cfg.Library, p).WithTracer(tracer)
		if collector != nil {
			lib.WithMetrics(collector)
		}
		if deps.Recorder != nil {
			lib.WithRecorder(deps.Recorder)
		}
		defer lib.Close()

		if err := lib.Load(ctx); err != nil {
			slog.Warn("initial library load failed", "dir", cfg.Library.Dir, "error", err)
		} else {
			fmt.Fprintf(out, "✓ Rule library loaded (%d rules)\n", lib.Snapshot().RuleCount())
		}

		if cfg.Library.Watch {
			if err := lib.Watch(ctx); err != nil {
				slog.Warn("library watch failed", "dir", cfg.Library.Dir, "error", err)
			}
		}

		checker.Register("library", lib.HealthCheck)
		deps.Library = lib
	}

	srv := server.NewServer(cfg, deps)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	if err := waitForServerReady(ctx, srv, 5*time.Second); err != nil {
		select {
		case startErr := <-errChan:
			return cli.NewCommandError("serve", startErr)
		default:
			return cli.NewCommandError("serve", err)
		}
	}

	addr := srv.Addr()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Server listening on %s\n", addr)
	fmt.Fprintf(out, "✓ Parse endpoint: http://%s/sim_parse\n", addr)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s%s\n", addr, cfg.Telemetry.Health.LivenessPath)
	if collector != nil {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	if err := <-errChan; err != nil {
		slog.Error("server stopped with error", "error", err)
		return cli.NewCommandError("serve", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// startHistory opens the store and starts the recorder and the retention
// pruner. A pruner that fails to start is logged and left out.
func startHistory(ctx context.Context, cfg *config.Config, collector *metrics.Collector) (history.Store, *recorder.Recorder, *retention.Pruner, error) {
	store, err := storage.NewFromConfig(&cfg.History)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}

	rec := recorder.New(store, &recorder.Config{
		AsyncBuffer:  cfg.History.Recorder.AsyncBuffer,
		WriteTimeout: cfg.History.Recorder.WriteTimeout,
	})

	var observer retention.Observer
	if collector != nil {
		observer = collector
	}
	pruner := retention.NewPruner(store, retention.ConfigFrom(cfg.History.Retention), observer)
	if err := pruner.Start(ctx); err != nil {
		slog.Warn("failed to start retention scheduler", "error", err)
		return store, rec, nil, nil
	}
	if next := pruner.NextPruning(); next != nil {
		slog.Debug("history retention scheduler started", "next_pruning", next)
	}
	return store, rec, pruner, nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "simparse v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Loading configuration from: %s\n", cfgFile)
	}
	fmt.Fprintln(out, "✓ Configuration loaded")

	slog.Debug("service configuration",
		"listen_address", cfg.Server.ListenAddress,
		"library_enabled", cfg.Library.Enabled,
		"history_backend", cfg.History.Backend,
		"tracing_enabled", cfg.Telemetry.Tracing.Enabled,
	)
}

// waitForServerReady polls until the server has bound its listener.
func waitForServerReady(ctx context.Context, srv *server.Server, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !srv.IsRunning() {
		if time.Now().After(deadline) {
			return fmt.Errorf("server did not start within %s", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

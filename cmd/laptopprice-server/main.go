package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-laptopprice/internal/bootstrap"
	"github.com/goliatone/go-laptopprice/internal/logging"
	"github.com/goliatone/go-laptopprice/pkg/config"
	"github.com/goliatone/go-laptopprice/pkg/metrics"
	"github.com/goliatone/go-laptopprice/pkg/orchestrator"
	"github.com/goliatone/go-laptopprice/pkg/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "laptopprice-server: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, err := bootstrap.NewFetcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	artifacts, err := bootstrap.Load(ctx, cfg, fetcher, logger)
	if err != nil {
		return err
	}

	recorder := metrics.NewPrometheus("laptopprice")
	orch := orchestrator.New(
		orchestrator.WithPipeline(artifacts.Pipeline),
		orchestrator.WithChoices(artifacts.Choices()),
		orchestrator.WithThemeSelector(orchestrator.NewStaticSelector(orchestrator.DefaultManifest())),
		orchestrator.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
		orchestrator.WithLogger(logger.WithComponent("orchestrator").Logger),
		orchestrator.WithMetrics(recorder),
	)
	if _, err := orch.Form(ctx); err != nil {
		return fmt.Errorf("build form: %w", err)
	}

	srv := server.New(orch,
		server.WithLogger(logger.WithComponent("http").Logger),
		server.WithMetrics(recorder),
		server.WithMetricsHandler(recorder.Handler()),
		server.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		server.WithTheme(cfg.Theme.Name, cfg.Theme.Variant),
		server.WithChoices(artifacts.Choices()),
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("listening",
		"addr", cfg.Server.Addr,
		"pipeline", bootstrap.PipelineLocation(cfg),
		"dataset", bootstrap.DatasetLocation(cfg),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	logger.Info("stopped")
	return nil
}

// loadConfig reads -config first so flags given on the command line override
// the file.
func loadConfig(args []string) (config.Config, error) {
	pre := flag.NewFlagSet("laptopprice-server", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	configPath := pre.String("config", "", "YAML configuration file")
	_ = pre.Parse(filterConfigArgs(args))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}

	fs := flag.NewFlagSet("laptopprice-server", flag.ContinueOnError)
	fs.String("config", *configPath, "YAML configuration file")
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func filterConfigArgs(args []string) []string {
	out := make([]string, 0, 2)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-config" || arg == "--config":
			out = append(out, arg)
			if i+1 < len(args) {
				out = append(out, args[i+1])
				i++
			}
		case strings.HasPrefix(arg, "-config=") || strings.HasPrefix(arg, "--config="):
			out = append(out, arg)
		}
	}
	return out
}

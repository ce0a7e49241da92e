package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/alumnicsv/internal/config"
	"github.com/JonMunkholm/alumnicsv/internal/core"
	"github.com/JonMunkholm/alumnicsv/internal/logging"
	"github.com/JonMunkholm/alumnicsv/internal/metric"
	"github.com/JonMunkholm/alumnicsv/internal/storage/memory"
	"github.com/JonMunkholm/alumnicsv/internal/storage/postgres"
	"github.com/JonMunkholm/alumnicsv/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	aliases := core.DefaultCampusAliases()
	if path := cfg.Pipeline.CampusAliasFile; path != "" {
		aliases, err = core.LoadCampusAliasFile(path)
		if err != nil {
			return err
		}
		slog.Info("campus aliases loaded", "file", path, "spellings", aliases.Len())
	}

	registry := metric.NewRegistry()

	var (
		recorder    core.RunRecorder
		healthCheck func(context.Context) error
	)
	if cfg.Database.Enabled() {
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if u, err := url.Parse(cfg.Database.URL); err == nil {
			slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
		}

		store := postgres.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		recorder = store
		healthCheck = pool.Ping
	} else {
		store := memory.NewStore(cfg.History.MemoryCapacity)
		recorder = store
		slog.Info("no database configured, keeping run history in memory",
			"capacity", store.Capacity())
	}

	service := core.NewService(core.ServiceConfig{
		Pipeline: core.PipelineOptions{
			MinBatchYear:       cfg.Pipeline.MinBatchYear,
			CampusAliases:      aliases,
			ApplyCampusAliases: cfg.Pipeline.ApplyCampusAliases,
		},
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	},
		core.WithRecorder(recorder),
		core.WithMetrics(registry.Metrics),
	)

	opts := []web.ServerOption{web.WithMetrics(registry.Metrics, registry.Handler())}
	if healthCheck != nil {
		opts = append(opts, web.WithHealthCheck(healthCheck))
	}
	server := web.NewServer(service, cfg, opts...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for conversions to complete", "active", status.Active)
			if err := service.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("conversions did not complete in time", "error", err)
			} else {
				slog.Info("all conversions completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

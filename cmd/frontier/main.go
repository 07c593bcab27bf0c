package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Frontier/internal/api"
	"github.com/MikeSquared-Agency/Frontier/internal/cloudcache"
	"github.com/MikeSquared-Agency/Frontier/internal/config"
	"github.com/MikeSquared-Agency/Frontier/internal/hermes"
	"github.com/MikeSquared-Agency/Frontier/internal/store"
	"github.com/MikeSquared-Agency/Frontier/internal/tracker"
	"github.com/MikeSquared-Agency/Frontier/internal/upstream"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database", "driver", cfg.Database.Driver)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	upstreamClient := upstream.NewHTTPClient(cfg.Upstream.URL, cfg.Upstream.Token)

	// Tracker
	t := tracker.New(db, hermesClient, upstreamClient, cfg, logger)
	t.Start(ctx)
	defer t.Stop()
	t.SetupSubscriptions()
	logger.Info("tracker started", "poll_interval", cfg.PollInterval())

	clouds := cloudcache.New(cfg.Cache.Entries, cfg.CacheTTL(), cloudcache.Synth{Logger: logger}, logger)

	// API server
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(db, hermesClient, t, clouds, cfg, logger),
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		s, err := store.NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite", "":
		s, err := store.NewSQLiteStore(cfg.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cylvision/dockwatch/internal/adapters/bus"
	"github.com/cylvision/dockwatch/internal/adapters/http/ops"
	app "github.com/cylvision/dockwatch/internal/app"
	"github.com/cylvision/dockwatch/internal/config"
	"github.com/cylvision/dockwatch/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// The broker carries detection batches in and realtime counts out.
	// Like the durable log, it is required at startup.
	redisBus, err := bus.NewRedis(ctx, cfg.RedisURL, cfg.BatchChannel, cfg.CountsChannel)
	if err != nil {
		os.Stderr.WriteString("failed to connect to redis: " + err.Error() + "\n")
		return
	}
	defer func() { _ = redisBus.Close() }()

	svc := app.New(
		app.WithLogger(log),
		app.WithPublisher(redisBus),
		app.WithDBPath(cfg.DBPath),
		app.WithQueueSize(cfg.QueueSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithTrackExpiry(time.Duration(cfg.TrackExpirySeconds)*time.Second),
		app.WithMinTravel(cfg.MinTravelPx),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Inbound batch stream.
	batches, err := redisBus.Batches(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to subscribe for batches: " + err.Error() + "\n")
		return
	}
	go func() {
		for batch := range batches {
			svc.ProcessBatch(ctx, batch)
		}
	}()

	// Ops HTTP: healthz, stats, metrics.
	mux := http.NewServeMux()
	ops.NewServer(svc).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting ops HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("ops HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "ops server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "stopped")
}

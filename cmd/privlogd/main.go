// privlogd reads log entries as JSON lines on stdin, pushes them through
// the privacy pipeline, and fans them out to the configured destinations.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/quillsec/privlog/internal/adapter/classify"
	"github.com/quillsec/privlog/internal/adapter/destination"
	"github.com/quillsec/privlog/internal/adapter/metrics"
	"github.com/quillsec/privlog/internal/domain"
	"github.com/quillsec/privlog/internal/pkg/config"
	"github.com/quillsec/privlog/internal/pkg/logger"
	"github.com/quillsec/privlog/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	renderMode, _ := cfg.ParsedRenderMode()

	// --- Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    ":9091",
		Handler: metricsMux,
	}
	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Shared Connections (only when configured) ---
	deps := destination.Dependencies{Logger: log}
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.DB = db
	}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("could not connect to redis, stream destination may fail", "error", err)
		}
		defer redisClient.Close()
		deps.Redis = redisClient
	}

	// --- Pipeline ---
	pipeline := usecase.NewPipeline(usecase.Options{
		QueueSize:            cfg.QueueSize,
		DestinationQueueSize: cfg.DestinationQueueSize,
		WriteTimeout:         cfg.WriteTimeout,
		RenderMode:           renderMode,
		AutoClassifier:       classify.Default().Func(),
		ProjectMetadata:      cfg.ProjectMetadata,
		ErrorBuffer:          cfg.ErrorBuffer,
	}, log, metrics.NewPipelineMetrics())

	go func() {
		for err := range pipeline.Errors() {
			log.Warn("pipeline error", "error", err)
		}
	}()

	// --- Destinations ---
	destCfgs, err := config.LoadDestinations(cfg.DestinationsPath)
	if err != nil {
		log.Error("failed to load destinations", "path", cfg.DestinationsPath, "error", err)
		os.Exit(1)
	}
	for _, destCfg := range destCfgs {
		dest, err := destination.New(destCfg, deps)
		if err != nil {
			log.Error("failed to build destination", "destination", destCfg.Identifier, "error", err)
			os.Exit(1)
		}
		if err := pipeline.Register(destCfg, dest); err != nil {
			log.Error("failed to register destination", "destination", destCfg.Identifier, "error", err)
			os.Exit(1)
		}
	}

	// --- Ingest Loop ---
	// One goroutine reads stdin so the signal handler stays responsive.
	lines := make(chan []byte, 256)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			lines <- line
		}
		if err := scanner.Err(); err != nil {
			log.Error("stdin read failed", "error", err)
		}
	}()

	log.Info("ingesting entries from stdin", "destinations", len(destCfgs))

Loop:
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				break Loop
			}
			var dto domain.LogEntryDTO
			if err := json.Unmarshal(line, &dto); err != nil {
				log.Warn("skipping malformed entry", "error", err)
				continue
			}
			entry, err := dto.ToEntry()
			if err != nil {
				log.Warn("skipping invalid entry", "error", err)
				continue
			}
			pipeline.Log(entry)
		case <-ctx.Done():
			log.Info("shutdown signal received")
			break Loop
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := pipeline.Close(shutdownCtx); err != nil {
		log.Error("pipeline close reported errors", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}

	log.Info("shut down gracefully")
}

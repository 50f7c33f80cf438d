// Command analytics starts the standalone usage-analytics service.
//
// It consumes library events (book views, searches) from Kafka, aggregates
// them in memory (totals, top books, top queries, zero-result words), serves
// the result at GET /api/v1/analytics, and periodically snapshots the stats
// to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValdezFOmar/GoodReads/internal/analytics"
	"github.com/ValdezFOmar/GoodReads/internal/analytics/snapshot"
	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/ValdezFOmar/GoodReads/pkg/health"
	"github.com/ValdezFOmar/GoodReads/pkg/kafka"
	"github.com/ValdezFOmar/GoodReads/pkg/logger"
	"github.com/ValdezFOmar/GoodReads/pkg/middleware"
	"github.com/ValdezFOmar/GoodReads/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.LibraryEvents, analytics.HandleEvent(aggregator))

	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.LibraryEvents)

	// Snapshot persistence is best-effort: without PostgreSQL the service
	// still aggregates and serves stats, it just loses them on restart.
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		store := snapshot.NewStore(db)
		if last, err := store.Latest(ctx); err != nil {
			slog.Warn("could not read last snapshot", "error", err)
		} else if last != nil {
			slog.Info("last persisted snapshot",
				"total_views", last.TotalViews,
				"total_searches", last.TotalSearches,
			)
		}
		go store.RunPeriodic(ctx, aggregator, cfg.Library.SnapshotInterval.Std())
		slog.Info("snapshot persistence enabled", "interval", cfg.Library.SnapshotInterval)
	}

	checker := health.NewChecker()
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp, Message: "consumer active"}
	})

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/analytics", analytics.NewStatsHandler(aggregator))
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	// Wait for Shutdown to finish draining in-flight requests before the
	// deferred closes run.
	<-shutdownDone

	slog.Info("analytics service stopped")
}

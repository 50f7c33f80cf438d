// Command server starts the library web server.
//
// It serves the index listing, keyword search over book summaries, and
// individual book pages with per-session view tracking and recommendations.
// All state lives in Redis; an optional Kafka producer publishes usage events
// for the analytics service.
//
// Usage:
//
//	go run ./cmd/server [-config configs/development.yaml]
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
	"github.com/ValdezFOmar/GoodReads/internal/catalog"
	"github.com/ValdezFOmar/GoodReads/internal/render"
	"github.com/ValdezFOmar/GoodReads/internal/search"
	"github.com/ValdezFOmar/GoodReads/internal/session"
	"github.com/ValdezFOmar/GoodReads/internal/web"
	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/ValdezFOmar/GoodReads/pkg/health"
	"github.com/ValdezFOmar/GoodReads/pkg/kafka"
	"github.com/ValdezFOmar/GoodReads/pkg/logger"
	"github.com/ValdezFOmar/GoodReads/pkg/metrics"
	"github.com/ValdezFOmar/GoodReads/pkg/middleware"
	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
)

// main wires Redis, the stores, the renderer, the optional analytics
// collector, and the router, then serves HTTP until SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting library server", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.Info("connected to redis", "addr", cfg.Redis.Addr)

	pages, err := render.NewPages()
	if err != nil {
		slog.Error("failed to load page templates", "error", err)
		os.Exit(1)
	}

	books := catalog.NewStore(redisClient)
	index := search.NewIndex(redisClient)
	sessions := session.NewStore(redisClient, cfg.Library.SessionTTL.Std())
	m := metrics.New()

	// Analytics events are optional; the server runs fine without a broker.
	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.LibraryEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 0)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector enabled", "topic", cfg.Kafka.Topics.LibraryEvents)
	}

	handler := web.NewHandler(books, index, sessions, pages, collector, m, web.Config{
		PreviewCount:   cfg.Library.PreviewCount,
		RecommendAfter: cfg.Library.RecommendAfter,
	})

	checker := health.NewChecker()
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	router := handler.Router()
	router.Handle(`^/health$`, func(w http.ResponseWriter, r *http.Request, _ web.Params) {
		checker.ReadyHandler()(w, r)
	})

	var chain http.Handler = router
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

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

	slog.Info("library server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	// Wait for Shutdown to finish draining in-flight requests before the
	// deferred closes (collector, producer, redis) run.
	<-shutdownDone

	slog.Info("library server stopped")
}

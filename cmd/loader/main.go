// Command loader ingests the book-summaries dataset into Redis.
//
// For each usable record it renders the book page, stores it in the catalog
// hash, and indexes the title and summary into the inverted index. It then
// pre-renders and caches the index listing page so the web server's first
// visitor gets a cache hit.
//
// Usage:
//
//	go run ./cmd/loader [-config configs/development.yaml] [-dataset path] [-max n]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ValdezFOmar/GoodReads/internal/catalog"
	"github.com/ValdezFOmar/GoodReads/internal/ingest"
	"github.com/ValdezFOmar/GoodReads/internal/render"
	"github.com/ValdezFOmar/GoodReads/internal/search"
	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/ValdezFOmar/GoodReads/pkg/logger"
	"github.com/ValdezFOmar/GoodReads/pkg/metrics"
	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	datasetPath := flag.String("dataset", "", "dataset path (defaults to library.datasetPath)")
	maxBooks := flag.Int("max", 0, "maximum books to load (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	path := *datasetPath
	if path == "" {
		path = cfg.Library.DatasetPath
	}
	slog.Info("starting loader", "dataset", path, "max", *maxBooks)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	pages, err := render.NewPages()
	if err != nil {
		slog.Error("failed to load page templates", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	books := catalog.NewStore(redisClient)
	loader := ingest.NewLoader(
		books,
		search.NewIndex(redisClient),
		pages,
		m,
	)

	loaded, err := loader.LoadFile(ctx, path, *maxBooks)
	if err != nil {
		slog.Error("load failed", "loaded", loaded, "error", err)
		os.Exit(1)
	}

	if err := loader.BuildIndexPage(ctx, cfg.Library.PreviewCount); err != nil {
		slog.Error("failed to build index page", "error", err)
		os.Exit(1)
	}

	total, err := books.Count(ctx)
	if err != nil {
		slog.Warn("could not count catalog", "error", err)
	}
	slog.Info("load complete", "books", loaded, "catalog_total", total)
}

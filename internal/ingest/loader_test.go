package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ValdezFOmar/GoodReads/internal/catalog"
	"github.com/ValdezFOmar/GoodReads/internal/render"
	"github.com/ValdezFOmar/GoodReads/internal/search"
	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/ValdezFOmar/GoodReads/pkg/metrics"
	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Prometheus collectors register globally, so every test shares one instance.
var (
	metricsOnce sync.Once
	testMetrics *metrics.Metrics
)

func sharedMetrics() *metrics.Metrics {
	metricsOnce.Do(func() { testMetrics = metrics.New() })
	return testMetrics
}

func newTestLoader(t *testing.T) (*Loader, *catalog.Store, *search.Index) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := pkgredis.NewClient(config.RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("creating redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	renderer, err := render.NewPages()
	if err != nil {
		t.Fatalf("parsing templates: %v", err)
	}

	books := catalog.NewStore(client)
	index := search.NewIndex(client)
	return NewLoader(books, index, renderer, sharedMetrics()), books, index
}

func writeDataset(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "summaries.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return path
}

func datasetLine(id, title, summary string) string {
	return id + "\t/m/" + id + "\t" + title + "\tSome Author\t2000-01-01\t" +
		`{"/m/x": "Fiction"}` + "\t" + summary
}

func TestLoadBook(t *testing.T) {
	ctx := context.Background()
	loader, books, index := newTestLoader(t)

	err := loader.LoadBook(ctx, catalog.Book{
		ID:      "42",
		Title:   "Dune",
		Author:  "Frank Herbert",
		Genres:  []string{"Science Fiction"},
		Summary: "A desert planet.",
	})
	if err != nil {
		t.Fatalf("LoadBook: %v", err)
	}

	stored, err := books.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(string(stored.Content), "Dune") {
		t.Error("stored content should be the rendered book page")
	}

	// Title and summary are both indexed with one tokenisation.
	for _, words := range [][]string{{"dune"}, {"desert", "planet"}, {"DESERT"}} {
		ids, err := index.Query(ctx, words)
		if err != nil {
			t.Fatalf("Query(%v): %v", words, err)
		}
		if len(ids) != 1 || ids[0] != "42" {
			t.Errorf("Query(%v) = %v, want [42]", words, ids)
		}
	}
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()
	loader, books, _ := newTestLoader(t)

	path := writeDataset(t,
		datasetLine("1", "Dune", "A desert planet."),
		"malformed line",
		datasetLine("2", "Hyperion", "Pilgrims and a time tomb."),
	)

	loaded, err := loader.LoadFile(ctx, path, 0)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded != 2 {
		t.Errorf("loaded = %d, want 2", loaded)
	}

	count, err := books.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("catalog holds %d books, want 2", count)
	}
}

func TestLoadFileRespectsLimit(t *testing.T) {
	ctx := context.Background()
	loader, books, _ := newTestLoader(t)

	path := writeDataset(t,
		datasetLine("1", "Dune", "one"),
		datasetLine("2", "Hyperion", "two"),
		datasetLine("3", "Foundation", "three"),
	)

	loaded, err := loader.LoadFile(ctx, path, 2)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded != 2 {
		t.Errorf("loaded = %d, want 2", loaded)
	}
	if count, _ := books.Count(ctx); count != 2 {
		t.Errorf("catalog holds %d books, want 2", count)
	}
}

func TestLoadFileCountsLoadedBooks(t *testing.T) {
	ctx := context.Background()
	loader, _, _ := newTestLoader(t)

	before := testutil.ToFloat64(sharedMetrics().BooksLoadedTotal)
	path := writeDataset(t,
		datasetLine("1", "Dune", "A desert planet."),
		datasetLine("2", "Hyperion", "Pilgrims and a time tomb."),
	)
	if _, err := loader.LoadFile(ctx, path, 0); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := testutil.ToFloat64(sharedMetrics().BooksLoadedTotal) - before; got != 2 {
		t.Errorf("books_loaded_total advanced by %v, want 2", got)
	}
}

func TestBuildIndexPage(t *testing.T) {
	ctx := context.Background()
	loader, books, _ := newTestLoader(t)

	path := writeDataset(t, datasetLine("1", "Dune", "A desert planet."))
	if _, err := loader.LoadFile(ctx, path, 0); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := loader.BuildIndexPage(ctx, 10); err != nil {
		t.Fatalf("BuildIndexPage: %v", err)
	}

	page, ok, err := books.IndexPage(ctx)
	if err != nil || !ok {
		t.Fatalf("IndexPage: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(string(page), "Dune") {
		t.Error("pre-rendered index page should preview the catalog")
	}
}

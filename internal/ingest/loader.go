package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ValdezFOmar/GoodReads/internal/catalog"
	"github.com/ValdezFOmar/GoodReads/internal/search"
	"github.com/ValdezFOmar/GoodReads/pkg/metrics"
)

// BookRenderer renders the stored page for a single book.
type BookRenderer interface {
	RenderBook(book catalog.Book) ([]byte, error)
	RenderIndex(books []catalog.Book, limit int) ([]byte, error)
}

// Loader ingests parsed books: it renders each book's page, stores it in the
// catalog, and indexes its title and summary.
type Loader struct {
	books    *catalog.Store
	index    *search.Index
	renderer BookRenderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewLoader creates a Loader. metrics may be nil when running outside a
// metrics-serving process.
func NewLoader(books *catalog.Store, index *search.Index, renderer BookRenderer, m *metrics.Metrics) *Loader {
	return &Loader{
		books:    books,
		index:    index,
		renderer: renderer,
		metrics:  m,
		logger:   slog.Default().With("component", "loader"),
	}
}

// LoadBook renders, stores, and indexes one book. Indexing covers the title
// and summary only, with the same tokenisation the search path uses.
func (l *Loader) LoadBook(ctx context.Context, book catalog.Book) error {
	content, err := l.renderer.RenderBook(book)
	if err != nil {
		return fmt.Errorf("rendering book %s: %w", book.ID, err)
	}
	book.Content = content

	if err := l.books.Put(ctx, &book); err != nil {
		return err
	}
	tokens, err := l.index.Add(ctx, book.ID, book.Title, book.Summary)
	if err != nil {
		return err
	}
	if l.metrics != nil {
		l.metrics.BooksLoadedTotal.Inc()
	}
	l.logger.Info("book loaded", "id", book.ID, "title", book.Title, "tokens", tokens)
	return nil
}

// LoadFile ingests up to maxBooks records from the dataset at path. A
// non-positive maxBooks means no limit. It returns the number of books
// loaded.
func (l *Loader) LoadFile(ctx context.Context, path string, maxBooks int) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer file.Close()

	loaded := 0
	stats, err := ParseDataset(file, func(book catalog.Book) error {
		if maxBooks > 0 && loaded >= maxBooks {
			return errLoadLimit
		}
		if err := l.LoadBook(ctx, book); err != nil {
			return err
		}
		loaded++
		return nil
	})
	if err != nil && err != errLoadLimit {
		return loaded, err
	}

	l.logger.Info("dataset loaded",
		"path", path,
		"loaded", loaded,
		"skipped", stats.Skipped,
		"filtered", stats.Filtered,
	)
	return loaded, nil
}

// BuildIndexPage renders the listing preview and caches it, so the first
// visitor after a load does not pay the rendering cost.
func (l *Loader) BuildIndexPage(ctx context.Context, previewCount int) error {
	preview := make([]catalog.Book, 0, previewCount)
	err := l.books.Scan(ctx, func(book *catalog.Book) bool {
		preview = append(preview, *book)
		return len(preview) < previewCount
	})
	if err != nil {
		return err
	}
	page, err := l.renderer.RenderIndex(preview, previewCount)
	if err != nil {
		return err
	}
	if err := l.books.SetIndexPage(ctx, page); err != nil {
		return err
	}
	l.logger.Info("index page pre-rendered", "books", len(preview))
	return nil
}

// errLoadLimit stops ParseDataset once maxBooks records have been loaded.
var errLoadLimit = fmt.Errorf("load limit reached")

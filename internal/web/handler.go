package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ValdezFOmar/GoodReads/internal/analytics"
	"github.com/ValdezFOmar/GoodReads/internal/catalog"
	"github.com/ValdezFOmar/GoodReads/internal/recommend"
	"github.com/ValdezFOmar/GoodReads/internal/search"
	"github.com/ValdezFOmar/GoodReads/internal/session"
	apperrors "github.com/ValdezFOmar/GoodReads/pkg/errors"
	"github.com/ValdezFOmar/GoodReads/pkg/logger"
	"github.com/ValdezFOmar/GoodReads/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// sessionCookie is the cookie carrying the opaque session token.
const sessionCookie = "session_id"

// Renderer is the page-rendering collaborator the handlers delegate to.
type Renderer interface {
	RenderIndex(books []catalog.Book, limit int) ([]byte, error)
	RenderSearchResults(words []string, books []catalog.Book) ([]byte, error)
	RenderRecommendation(book catalog.Book) ([]byte, error)
}

// Config holds the behavioral knobs of the handlers.
type Config struct {
	// PreviewCount is how many books the index page lists.
	PreviewCount int
	// RecommendAfter is the history length at which book pages start
	// carrying a recommendation.
	RecommendAfter int
}

// Handler implements the library's HTTP endpoints. All dependencies are
// injected at construction so tests can run against isolated instances.
type Handler struct {
	books     *catalog.Store
	index     *search.Index
	sessions  *session.Store
	renderer  Renderer
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       Config
	flight    singleflight.Group
	logger    *slog.Logger
}

// NewHandler creates the handler set. collector may be nil, in which case no
// analytics events are emitted.
func NewHandler(
	books *catalog.Store,
	index *search.Index,
	sessions *session.Store,
	renderer Renderer,
	collector *analytics.Collector,
	m *metrics.Metrics,
	cfg Config,
) *Handler {
	return &Handler{
		books:     books,
		index:     index,
		sessions:  sessions,
		renderer:  renderer,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "web-handler"),
	}
}

// Router builds the route table.
//
// Priority order matters: /search must never fall through to the book
// handler, and the book pattern accepts both the /book and /books spellings.
// The search binding is a prefix match: any path starting with /search
// reaches the search handler.
//
//	^/$                            → Index
//	^/search                       → Search
//	^/books?/(?P<book_id>\d+)$     → GetBook
func (h *Handler) Router() *Router {
	rt := NewRouter()
	rt.Handle(`^/$`, h.Index)
	rt.Handle(`^/search`, h.Search)
	rt.Handle(`^/books?/(?P<book_id>\d+)$`, h.GetBook)
	return rt
}

// ---------- Index ----------

// Index serves the cached listing page, rendering and caching it on a miss.
// Concurrent misses collapse into a single rendering via singleflight.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request, _ Params) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	page, ok, err := h.books.IndexPage(ctx)
	if err != nil {
		h.serverError(w, log, "fetching index page", err)
		return
	}
	if ok {
		h.metrics.IndexPageHitsTotal.Inc()
		h.writeHTML(w, page)
		return
	}

	h.metrics.IndexPageMissesTotal.Inc()
	// Detached from the request context so one impatient client cannot
	// cancel a rendering other requests are waiting on.
	buildCtx := context.WithoutCancel(ctx)
	v, err, _ := h.flight.Do("index-page", func() (any, error) {
		return h.buildIndexPage(buildCtx)
	})
	if err != nil {
		h.serverError(w, log, "building index page", err)
		return
	}
	h.writeHTML(w, v.([]byte))
}

// buildIndexPage is the cache-aside compute step: scan a preview of the
// catalog, render, cache, return.
func (h *Handler) buildIndexPage(ctx context.Context) ([]byte, error) {
	preview := make([]catalog.Book, 0, h.cfg.PreviewCount)
	err := h.books.Scan(ctx, func(book *catalog.Book) bool {
		preview = append(preview, *book)
		return len(preview) < h.cfg.PreviewCount
	})
	if err != nil {
		return nil, err
	}
	page, err := h.renderer.RenderIndex(preview, h.cfg.PreviewCount)
	if err != nil {
		return nil, err
	}
	if err := h.books.SetIndexPage(ctx, page); err != nil {
		return nil, err
	}
	h.logger.Info("index page rendered and cached", "books", len(preview))
	return page, nil
}

// ---------- Search ----------

// Search answers conjunctive keyword queries over book titles and summaries.
// A missing or wordless query parameter yields an empty result page, never
// the whole catalog.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ Params) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	raw := r.URL.Query().Get("words")
	words := search.Tokenize(raw)

	ids, err := h.index.Query(ctx, words)
	if err != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		h.serverError(w, log, "querying inverted index", err)
		return
	}

	books := h.fetchBooks(ctx, log, ids)
	page, err := h.renderer.RenderSearchResults(words, books)
	if err != nil {
		h.serverError(w, log, "rendering search results", err)
		return
	}

	switch {
	case len(words) == 0:
		h.metrics.SearchQueriesTotal.WithLabelValues("empty_query").Inc()
	case len(ids) == 0:
		h.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	default:
		h.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	h.metrics.SearchResultsCount.Observe(float64(len(ids)))

	h.track(analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     raw,
		Words:     words,
		Results:   len(ids),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestIDFromContext(ctx),
	})

	h.writeHTML(w, page)
}

// fetchBooks resolves matched IDs to books, skipping any that have vanished
// from the catalog since they were indexed.
func (h *Handler) fetchBooks(ctx context.Context, log *slog.Logger, ids []string) []catalog.Book {
	books := make([]catalog.Book, 0, len(ids))
	for _, id := range ids {
		book, err := h.books.Get(ctx, id)
		if err != nil {
			log.Warn("indexed book missing from catalog", "id", id, "error", err)
			continue
		}
		books = append(books, *book)
	}
	return books
}

// ---------- Book ----------

// GetBook serves a single book page. It resolves (or mints) the session
// token, records the view, refreshes the session cookie, and once the
// session's history is long enough appends a recommendation for an unseen
// book.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request, params Params) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	bookID := params["book_id"]

	token, isNew := h.sessions.Resolve(h.readSessionCookie(r))
	if isNew {
		h.metrics.SessionsStartedTotal.Inc()
	}

	if err := h.sessions.RecordView(ctx, token, bookID); err != nil {
		h.serverError(w, log, "recording view", err)
		return
	}

	book, err := h.books.Get(ctx, bookID)
	if errors.Is(err, apperrors.ErrBookNotFound) {
		NotFound(w, "Book not Found!")
		return
	}
	if err != nil {
		h.serverError(w, log, "fetching book", err)
		return
	}

	history, err := h.sessions.History(ctx, token)
	if err != nil {
		// Degrade to serving the book without a recommendation.
		log.Warn("failed to read session history", "session", token, "error", err)
		history = nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write(book.Content)

	var recommended string
	if len(history) >= h.cfg.RecommendAfter {
		if snippet, id := h.recommendation(ctx, log, history); snippet != nil {
			w.Write(snippet)
			recommended = id
			h.metrics.RecommendationsTotal.Inc()
		}
	}

	h.metrics.BookViewsTotal.Inc()
	h.track(analytics.ViewEvent{
		Type:        analytics.EventBookViewed,
		BookID:      bookID,
		SessionID:   token,
		NewSession:  isNew,
		Recommended: recommended,
		Timestamp:   time.Now().UTC(),
		RequestID:   logger.RequestIDFromContext(ctx),
	})
}

// recommendation picks an unseen book and renders its snippet. Failures are
// logged and swallowed: the book page itself has already been written.
func (h *Handler) recommendation(ctx context.Context, log *slog.Logger, history []string) ([]byte, string) {
	universe, err := h.books.IDs(ctx)
	if err != nil {
		log.Warn("failed to enumerate catalog for recommendation", "error", err)
		return nil, ""
	}
	if len(universe) == 0 {
		return nil, ""
	}

	id, err := recommend.Pick(recommend.SeenSet(history), universe)
	if err != nil {
		log.Warn("recommendation selection failed", "error", err)
		return nil, ""
	}
	book, err := h.books.Get(ctx, id)
	if err != nil {
		log.Warn("recommended book missing from catalog", "id", id, "error", err)
		return nil, ""
	}
	snippet, err := h.renderer.RenderRecommendation(*book)
	if err != nil {
		log.Warn("failed to render recommendation", "id", id, "error", err)
		return nil, ""
	}
	return snippet, id
}

// ---------- Helpers ----------

func (h *Handler) readSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) serverError(w http.ResponseWriter, log *slog.Logger, action string, err error) {
	log.Error(action+" failed", "error", err)
	status := apperrors.HTTPStatusCode(err)
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) track(event any) {
	if h.collector != nil {
		h.collector.Track(event)
	}
}

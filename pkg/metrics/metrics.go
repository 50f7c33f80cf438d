// Package metrics defines the Prometheus metric collectors used across the
// library server and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the library server.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchResultsCount   prometheus.Histogram
	IndexPageHitsTotal   prometheus.Counter
	IndexPageMissesTotal prometheus.Counter
	BookViewsTotal       prometheus.Counter
	SessionsStartedTotal prometheus.Counter
	RecommendationsTotal prometheus.Counter
	BooksLoadedTotal     prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, empty_query, error).",
			},
			[]string{"result_type"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		IndexPageHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_page_cache_hits_total",
				Help: "Index page requests served from the cached rendering.",
			},
		),
		IndexPageMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_page_cache_misses_total",
				Help: "Index page requests that triggered a fresh rendering.",
			},
		),
		BookViewsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "book_views_total",
				Help: "Total book pages served.",
			},
		),
		SessionsStartedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sessions_started_total",
				Help: "Total fresh session tokens minted.",
			},
		),
		RecommendationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "recommendations_served_total",
				Help: "Total recommendations appended to book pages.",
			},
		),
		BooksLoadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "books_loaded_total",
				Help: "Total books loaded into the catalog by the loader.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchResultsCount,
		m.IndexPageHitsTotal,
		m.IndexPageMissesTotal,
		m.BookViewsTotal,
		m.SessionsStartedTotal,
		m.RecommendationsTotal,
		m.BooksLoadedTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

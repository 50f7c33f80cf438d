package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValdezFOmar/GoodReads/pkg/kafka"
)

// AggregatedStats is the summary the analytics service serves and snapshots.
type AggregatedStats struct {
	TotalViews       int64        `json:"total_views"`
	TotalSearches    int64        `json:"total_searches"`
	EmptySearches    int64        `json:"empty_searches"`
	ZeroResultCount  int64        `json:"zero_result_count"`
	SessionsStarted  int64        `json:"sessions_started"`
	Recommended      int64        `json:"recommended"`
	TopBooks         []EntryCount `json:"top_books"`
	TopQueries       []EntryCount `json:"top_queries"`
	ZeroResultWords  []EntryCount `json:"zero_result_queries"`
	ViewsPerMinute   float64      `json:"views_per_minute"`
	QueriesPerMinute float64      `json:"queries_per_minute"`
}

// EntryCount pairs a book ID or query string with its occurrence count.
type EntryCount struct {
	Entry string `json:"entry"`
	Count int64  `json:"count"`
}

// Aggregator consumes library events from Kafka and keeps running usage
// stats in memory. All counters are safe for concurrent reads while the
// consume loop runs.
type Aggregator struct {
	mu              sync.RWMutex
	totalViews      atomic.Int64
	totalSearches   atomic.Int64
	emptySearches   atomic.Int64
	zeroResults     atomic.Int64
	sessionsStarted atomic.Int64
	recommended     atomic.Int64
	viewCounts      map[string]int64
	queryCounts     map[string]int64
	zeroResultWords map[string]int64
	startTime       time.Time
	logger          *slog.Logger
}

// NewAggregator creates an empty Aggregator. Feed it by wiring HandleEvent
// into a Kafka consumer.
func NewAggregator() *Aggregator {
	return &Aggregator{
		viewCounts:      make(map[string]int64),
		queryCounts:     make(map[string]int64),
		zeroResultWords: make(map[string]int64),
		startTime:       time.Now(),
		logger:          slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns the kafka.MessageHandler that feeds the aggregator.
// Undecodable events are logged and dropped, never retried.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		var probe struct {
			Type EventType `json:"type"`
		}
		if err := json.Unmarshal(value, &probe); err != nil {
			agg.logger.Error("failed to decode analytics event", "error", err)
			return nil
		}
		switch probe.Type {
		case EventBookViewed:
			event, err := kafka.DecodeJSON[ViewEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode view event", "error", err)
				return nil
			}
			agg.RecordView(event)
		case EventSearch:
			event, err := kafka.DecodeJSON[SearchEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode search event", "error", err)
				return nil
			}
			agg.RecordSearch(event)
		default:
			agg.logger.Warn("unknown analytics event type", "type", probe.Type)
		}
		return nil
	}
}

// RecordView folds a single view event into the stats.
func (a *Aggregator) RecordView(event ViewEvent) {
	a.totalViews.Add(1)
	if event.NewSession {
		a.sessionsStarted.Add(1)
	}
	if event.Recommended != "" {
		a.recommended.Add(1)
	}
	a.mu.Lock()
	a.viewCounts[event.BookID]++
	a.mu.Unlock()
}

// RecordSearch folds a single search event into the stats.
func (a *Aggregator) RecordSearch(event SearchEvent) {
	a.totalSearches.Add(1)
	if len(event.Words) == 0 {
		a.emptySearches.Add(1)
		return
	}
	a.mu.Lock()
	a.queryCounts[event.Query]++
	if event.Results == 0 {
		for _, w := range event.Words {
			a.zeroResultWords[w]++
		}
	}
	a.mu.Unlock()
	if event.Results == 0 {
		a.zeroResults.Add(1)
	}
}

// Stats returns a snapshot of the aggregated stats.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalViews:      a.totalViews.Load(),
		TotalSearches:   a.totalSearches.Load(),
		EmptySearches:   a.emptySearches.Load(),
		ZeroResultCount: a.zeroResults.Load(),
		SessionsStarted: a.sessionsStarted.Load(),
		Recommended:     a.recommended.Load(),
		TopBooks:        topN(a.viewCounts, 10),
		TopQueries:      topN(a.queryCounts, 10),
		ZeroResultWords: topN(a.zeroResultWords, 10),
	}

	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.ViewsPerMinute = float64(stats.TotalViews) / elapsed
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func topN(counts map[string]int64, n int) []EntryCount {
	result := make([]EntryCount, 0, len(counts))
	for entry, count := range counts {
		result = append(result, EntryCount{Entry: entry, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Entry < result[j].Entry
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

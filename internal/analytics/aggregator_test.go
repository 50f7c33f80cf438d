package analytics

import (
	"context"
	"encoding/json"
	"testing"
)

func viewEvent(bookID string, newSession bool, recommended string) ViewEvent {
	return ViewEvent{
		Type:        EventBookViewed,
		BookID:      bookID,
		SessionID:   "session-1",
		NewSession:  newSession,
		Recommended: recommended,
	}
}

func searchEvent(query string, words []string, results int) SearchEvent {
	return SearchEvent{
		Type:    EventSearch,
		Query:   query,
		Words:   words,
		Results: results,
	}
}

func TestAggregatorRecordView(t *testing.T) {
	agg := NewAggregator()

	agg.RecordView(viewEvent("42", true, ""))
	agg.RecordView(viewEvent("42", false, "7"))
	agg.RecordView(viewEvent("13", false, ""))

	stats := agg.Stats()
	if stats.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats.TotalViews)
	}
	if stats.SessionsStarted != 1 {
		t.Errorf("SessionsStarted = %d, want 1", stats.SessionsStarted)
	}
	if stats.Recommended != 1 {
		t.Errorf("Recommended = %d, want 1", stats.Recommended)
	}
	if len(stats.TopBooks) == 0 || stats.TopBooks[0].Entry != "42" || stats.TopBooks[0].Count != 2 {
		t.Errorf("TopBooks = %v", stats.TopBooks)
	}
}

func TestAggregatorRecordSearch(t *testing.T) {
	agg := NewAggregator()

	agg.RecordSearch(searchEvent("desert planet", []string{"desert", "planet"}, 3))
	agg.RecordSearch(searchEvent("desert planet", []string{"desert", "planet"}, 3))
	agg.RecordSearch(searchEvent("zorblax", []string{"zorblax"}, 0))
	agg.RecordSearch(searchEvent("", nil, 0))

	stats := agg.Stats()
	if stats.TotalSearches != 4 {
		t.Errorf("TotalSearches = %d, want 4", stats.TotalSearches)
	}
	if stats.EmptySearches != 1 {
		t.Errorf("EmptySearches = %d, want 1", stats.EmptySearches)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Entry != "desert planet" {
		t.Errorf("TopQueries = %v", stats.TopQueries)
	}
	if len(stats.ZeroResultWords) != 1 || stats.ZeroResultWords[0].Entry != "zorblax" {
		t.Errorf("ZeroResultWords = %v", stats.ZeroResultWords)
	}
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator()
	handler := HandleEvent(agg)
	ctx := context.Background()

	mustMarshal := func(v any) []byte {
		t.Helper()
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}

	if err := handler(ctx, nil, mustMarshal(viewEvent("42", true, ""))); err != nil {
		t.Fatalf("view event: %v", err)
	}
	if err := handler(ctx, nil, mustMarshal(searchEvent("dune", []string{"dune"}, 1))); err != nil {
		t.Fatalf("search event: %v", err)
	}

	// Garbage and unknown types are dropped, not retried.
	if err := handler(ctx, nil, []byte("not json")); err != nil {
		t.Errorf("undecodable event must not error: %v", err)
	}
	if err := handler(ctx, nil, []byte(`{"type": "mystery"}`)); err != nil {
		t.Errorf("unknown event type must not error: %v", err)
	}

	stats := agg.Stats()
	if stats.TotalViews != 1 || stats.TotalSearches != 1 {
		t.Errorf("stats = %+v, want one view and one search", stats)
	}
}

func TestTopN(t *testing.T) {
	counts := map[string]int64{"a": 2, "b": 5, "c": 2, "d": 1}

	got := topN(counts, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Entry != "b" {
		t.Errorf("first entry = %v, want b", got[0])
	}
	// Equal counts break ties by entry.
	if got[1].Entry != "a" || got[2].Entry != "c" {
		t.Errorf("tie-break order = %v, %v", got[1], got[2])
	}
}

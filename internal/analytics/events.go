// Package analytics defines the event schemas emitted by the web server and
// the aggregation that turns them into library usage stats.
package analytics

import "time"

type EventType string

const (
	EventBookViewed EventType = "book_viewed"
	EventSearch     EventType = "search"
)

// ViewEvent is emitted every time a book page is served.
type ViewEvent struct {
	Type        EventType `json:"type"`
	BookID      string    `json:"book_id"`
	SessionID   string    `json:"session_id"`
	NewSession  bool      `json:"new_session"`
	Recommended string    `json:"recommended,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
}

// SearchEvent is emitted for every search request, including ones with an
// empty word list.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Words     []string  `json:"words"`
	Results   int       `json:"results"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Package session tracks per-visitor view history. Sessions are anonymous:
// the identity is an opaque random token carried in a cookie, and an entry is
// an ordered most-recent-first list of viewed book IDs that expires passively.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
	"github.com/google/uuid"
)

// keyPrefix namespaces session histories in Redis: session:<token> is a list
// of book IDs, most recently viewed first.
const keyPrefix = "session:"

// Store manages session tokens and their view histories.
type Store struct {
	client *pkgredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a session store. ttl is applied to a history entry on
// every write, so an entry expires that long after its last recorded view.
func NewStore(client *pkgredis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "session-store"),
	}
}

// TTL returns the configured history time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Resolve returns the presented token if it is a syntactically valid session
// token, or mints a fresh one and reports isNew. A token whose history has
// expired is still valid; it simply has no history yet. Tokens are never
// checked against the store here.
func (s *Store) Resolve(presented string) (token string, isNew bool) {
	if presented != "" {
		if _, err := uuid.Parse(presented); err == nil {
			return presented, false
		}
	}
	return uuid.NewString(), true
}

// RecordView prepends bookID to the token's history unless it is already the
// most recent entry, so rapid repeat views of one book collapse into a single
// entry while non-consecutive repeats are kept. Every write refreshes the
// entry's expiry.
//
// The read-then-push pair is not atomic; concurrent requests on one session
// may race and the last writer wins, which the design accepts.
func (s *Store) RecordView(ctx context.Context, token, bookID string) error {
	key := keyPrefix + token
	head, err := s.client.LIndex(ctx, key, 0)
	if err != nil && !pkgredis.IsNilError(err) {
		return fmt.Errorf("reading session head %s: %w", token, err)
	}
	if err == nil && head == bookID {
		return nil
	}
	if err := s.client.LPush(ctx, key, bookID); err != nil {
		return fmt.Errorf("recording view for session %s: %w", token, err)
	}
	if err := s.client.Expire(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("refreshing session expiry %s: %w", token, err)
	}
	s.logger.Debug("view recorded", "session", token, "book_id", bookID)
	return nil
}

// History returns the token's view history, most recent first. A token with
// no entry (never written, or expired) yields an empty history.
func (s *Store) History(ctx context.Context, token string) ([]string, error) {
	history, err := s.client.LRange(ctx, keyPrefix+token, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("reading session history %s: %w", token, err)
	}
	return history, nil
}

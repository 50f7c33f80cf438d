package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
)

// wordKeyPrefix namespaces the posting sets in Redis: word:<token> holds the
// IDs of every book whose indexed fields contain that token.
const wordKeyPrefix = "word:"

// Index is the inverted index. Posting lists are Redis sets, so adding the
// same (token, id) pair twice has no effect and membership queries compose
// with SINTER.
type Index struct {
	client *pkgredis.Client
	logger *slog.Logger
}

// NewIndex creates an inverted index on top of the given Redis client.
func NewIndex(client *pkgredis.Client) *Index {
	return &Index{
		client: client,
		logger: slog.Default().With("component", "inverted-index"),
	}
}

// Add tokenises each text field and adds id to the posting set of every
// distinct token. It returns the number of distinct tokens indexed.
func (ix *Index) Add(ctx context.Context, id string, fields ...string) (int, error) {
	tokens := make(map[string]struct{})
	for _, field := range fields {
		for _, token := range Tokenize(field) {
			tokens[token] = struct{}{}
		}
	}
	for token := range tokens {
		if err := ix.client.SAdd(ctx, wordKeyPrefix+token, id); err != nil {
			return 0, fmt.Errorf("indexing token %q for book %s: %w", token, id, err)
		}
	}
	ix.logger.Debug("book indexed", "id", id, "tokens", len(tokens))
	return len(tokens), nil
}

// Query returns the IDs of books containing every one of the given words.
// An empty word list yields an empty result without touching the store,
// never a match-all. A word that was never indexed has an empty posting set,
// which forces the whole intersection empty (AND semantics). Callers must
// treat the result as an unordered set.
func (ix *Index) Query(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		return nil, nil
	}
	keys := make([]string, len(words))
	for i, w := range words {
		keys[i] = wordKeyPrefix + strings.ToLower(w)
	}
	ids, err := ix.client.SInter(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("intersecting posting sets: %w", err)
	}
	return ids, nil
}

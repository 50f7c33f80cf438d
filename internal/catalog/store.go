package catalog

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/ValdezFOmar/GoodReads/pkg/errors"
	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
)

const (
	// booksKey is the Redis hash holding every book, keyed by ID.
	booksKey = "books"
	// indexPageKey is the scalar key caching the rendered index listing.
	indexPageKey = ":index:"
)

// Store reads and writes books in the backing Redis instance.
type Store struct {
	client *pkgredis.Client
	logger *slog.Logger
}

// NewStore creates a catalog store on top of the given Redis client.
func NewStore(client *pkgredis.Client) *Store {
	return &Store{
		client: client,
		logger: slog.Default().With("component", "catalog-store"),
	}
}

// Put stores or overwrites a book under its ID.
func (s *Store) Put(ctx context.Context, book *Book) error {
	data, err := book.encode()
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, booksKey, book.ID, data); err != nil {
		return fmt.Errorf("storing book %s: %w", book.ID, err)
	}
	return nil
}

// Get returns the book stored under id. A missing book yields
// errors.ErrBookNotFound; any other error means the store is misbehaving.
func (s *Store) Get(ctx context.Context, id string) (*Book, error) {
	data, err := s.client.HGet(ctx, booksKey, id)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return nil, fmt.Errorf("book %s: %w", id, apperrors.ErrBookNotFound)
		}
		return nil, fmt.Errorf("fetching book %s: %w", id, err)
	}
	return decodeBook(data)
}

// Scan walks every stored book in store-defined order, invoking fn for each.
// Iteration stops early when fn returns false. Entries that fail to decode
// are logged and skipped rather than aborting the walk.
func (s *Store) Scan(ctx context.Context, fn func(book *Book) bool) error {
	return s.client.HScanAll(ctx, booksKey, func(id string, value []byte) bool {
		book, err := decodeBook(value)
		if err != nil {
			s.logger.Warn("skipping undecodable book record", "id", id, "error", err)
			return true
		}
		return fn(book)
	})
}

// IDs returns the full set of stored book IDs.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.HKeys(ctx, booksKey)
	if err != nil {
		return nil, fmt.Errorf("listing book ids: %w", err)
	}
	return ids, nil
}

// Count returns the number of stored books.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.client.HLen(ctx, booksKey)
}

// IndexPage returns the cached index listing. ok is false on a cache miss,
// which is a normal branch, not an error.
func (s *Store) IndexPage(ctx context.Context) (page []byte, ok bool, err error) {
	data, err := s.client.Get(ctx, indexPageKey)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetching cached index page: %w", err)
	}
	return data, true, nil
}

// SetIndexPage caches the rendered index listing. The page has no TTL; there
// is no write path for books after ingestion, so it never goes stale.
func (s *Store) SetIndexPage(ctx context.Context, page []byte) error {
	if err := s.client.Set(ctx, indexPageKey, page, 0); err != nil {
		return fmt.Errorf("caching index page: %w", err)
	}
	return nil
}

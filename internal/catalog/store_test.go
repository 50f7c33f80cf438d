package catalog

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/ValdezFOmar/GoodReads/pkg/config"
	apperrors "github.com/ValdezFOmar/GoodReads/pkg/errors"
	pkgredis "github.com/ValdezFOmar/GoodReads/pkg/redis"
	"github.com/alicebob/miniredis/v2"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := pkgredis.NewClient(config.RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("creating redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return NewStore(client), srv
}

func sampleBook(id string) *Book {
	return &Book{
		ID:              id,
		Title:           "Dune",
		Author:          "Frank Herbert",
		PublicationDate: "1965-08-01",
		Genres:          []string{"Science Fiction"},
		Summary:         "A desert planet and its spice.",
		Content:         []byte("<html><body>Dune</body></html>"),
	}
}

func TestPutGetRoundtrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	want := sampleBook("42")
	if err := store.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), "9999")
	if !errors.Is(err, apperrors.ErrBookNotFound) {
		t.Errorf("missing book should yield ErrBookNotFound, got %v", err)
	}
}

func TestPutOverwrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	first := sampleBook("42")
	if err := store.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	second := sampleBook("42")
	second.Title = "Dune Messiah"
	if err := store.Put(ctx, second); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Dune Messiah" {
		t.Errorf("overwrite did not take, title = %s", got.Title)
	}
}

func TestIDsAndCount(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, id := range []string{"1", "2", "3"} {
		if err := store.Put(ctx, sampleBook(id)); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}

	ids, err := store.IDs(ctx)
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"1", "2", "3"}) {
		t.Errorf("IDs = %v", ids)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	store, srv := newTestStore(t)

	for _, id := range []string{"1", "2", "3"} {
		if err := store.Put(ctx, sampleBook(id)); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}

	t.Run("visits every book", func(t *testing.T) {
		var seen []string
		err := store.Scan(ctx, func(b *Book) bool {
			seen = append(seen, b.ID)
			return true
		})
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		sort.Strings(seen)
		if !reflect.DeepEqual(seen, []string{"1", "2", "3"}) {
			t.Errorf("scanned %v", seen)
		}
	})

	t.Run("stops early", func(t *testing.T) {
		var visits int
		err := store.Scan(ctx, func(b *Book) bool {
			visits++
			return false
		})
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if visits != 1 {
			t.Errorf("callback ran %d times after returning false", visits)
		}
	})

	t.Run("skips undecodable records", func(t *testing.T) {
		srv.HSet(booksKey, "bad", "not json")
		var seen int
		err := store.Scan(ctx, func(b *Book) bool {
			seen++
			return true
		})
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		if seen != 3 {
			t.Errorf("expected the 3 valid books, saw %d", seen)
		}
	})
}

func TestIndexPageCache(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, ok, err := store.IndexPage(ctx)
	if err != nil {
		t.Fatalf("IndexPage on empty cache: %v", err)
	}
	if ok {
		t.Fatal("cache miss must report ok=false, not a page")
	}

	want := []byte("<html>index</html>")
	if err := store.SetIndexPage(ctx, want); err != nil {
		t.Fatalf("SetIndexPage: %v", err)
	}

	got, ok, err := store.IndexPage(ctx)
	if err != nil {
		t.Fatalf("IndexPage: %v", err)
	}
	if !ok {
		t.Fatal("cache hit must report ok=true")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("IndexPage = %q, want %q", got, want)
	}
}

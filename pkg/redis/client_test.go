package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := NewClient(config.RedisConfig{Addr: srv.Addr()})
	if err != nil {
		t.Fatalf("creating redis client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestIsNilError(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Get(context.Background(), "no-such-key")
	if err == nil {
		t.Fatal("Get on a missing key should error")
	}
	if !IsNilError(err) {
		t.Errorf("IsNilError(%v) = false, want true", err)
	}

	wrapped := fmt.Errorf("loading page: %w", goredis.Nil)
	if !IsNilError(wrapped) {
		t.Errorf("IsNilError must see through wrapped errors: %v", wrapped)
	}

	if IsNilError(errors.New("connection refused")) {
		t.Error("IsNilError must not match unrelated errors")
	}
	if IsNilError(nil) {
		t.Error("IsNilError(nil) must be false")
	}
}

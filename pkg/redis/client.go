// Package redis provides a thin wrapper around go-redis/v9 with connection
// pooling and the key/value, hash, set, and list operations the library
// server relies on.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValdezFOmar/GoodReads/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// ---------- Scalar operations ----------

// Get returns the raw value for the given key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	return c.rdb.Get(ctx, key).Bytes()
}

// Set stores a value with the given TTL. A zero TTL means no expiry.
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Expire refreshes the TTL of an existing key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

// ---------- Hash operations ----------

// HSet stores a field/value pair in the hash at key.
func (c *Client) HSet(ctx context.Context, key, field string, value interface{}) error {
	return c.rdb.HSet(ctx, key, field, value).Err()
}

// HGet returns the value of a hash field.
func (c *Client) HGet(ctx context.Context, key, field string) ([]byte, error) {
	return c.rdb.HGet(ctx, key, field).Bytes()
}

// HKeys returns all field names of the hash at key.
func (c *Client) HKeys(ctx context.Context, key string) ([]string, error) {
	return c.rdb.HKeys(ctx, key).Result()
}

// HLen returns the number of fields in the hash at key.
func (c *Client) HLen(ctx context.Context, key string) (int64, error) {
	return c.rdb.HLen(ctx, key).Result()
}

// HScanAll cursors over every field/value pair of the hash at key, invoking fn
// for each. Iteration stops early when fn returns false. The traversal order
// is whatever HSCAN produces and is not stable across calls.
func (c *Client) HScanAll(ctx context.Context, key string, fn func(field string, value []byte) bool) error {
	iter := c.rdb.HScan(ctx, key, 0, "", 100).Iterator()
	for iter.Next(ctx) {
		field := iter.Val()
		if !iter.Next(ctx) {
			break
		}
		if !fn(field, []byte(iter.Val())) {
			return iter.Err()
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning hash %s: %w", key, err)
	}
	return nil
}

// ---------- Set operations ----------

// SAdd adds members to the set at key.
func (c *Client) SAdd(ctx context.Context, key string, members ...interface{}) error {
	return c.rdb.SAdd(ctx, key, members...).Err()
}

// SInter returns the intersection of the sets at the given keys. A missing
// key behaves as an empty set, making the whole intersection empty.
func (c *Client) SInter(ctx context.Context, keys ...string) ([]string, error) {
	return c.rdb.SInter(ctx, keys...).Result()
}

// ---------- List operations ----------

// LPush prepends values to the list at key.
func (c *Client) LPush(ctx context.Context, key string, values ...interface{}) error {
	return c.rdb.LPush(ctx, key, values...).Err()
}

// LIndex returns the element at the given position of the list at key.
func (c *Client) LIndex(ctx context.Context, key string, index int64) (string, error) {
	return c.rdb.LIndex(ctx, key, index).Result()
}

// LRange returns the elements between start and stop of the list at key.
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.rdb.LRange(ctx, key, start, stop).Result()
}

// ---------- Connection ----------

// IsNilError reports whether err is a Redis nil (key-not-found) error,
// possibly wrapped.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

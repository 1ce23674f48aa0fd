// Package cache is an optional read-through cache for upstream metadata
// responses. Every failure mode (no backend configured, backend unreachable,
// undecodable payload) degrades to a miss; callers never see a cache error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
}

// New wraps rdb. A nil client yields a disabled cache where Get always
// misses and Set is a no-op.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get loads the JSON value stored under key into dest and reports whether it
// was found. Backend and decode errors count as misses.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("cache: decode %s: %v", key, err)
		return false
	}
	return true
}

// Set stores value as JSON under key with the given TTL. The TTL is handed
// to the backend uninterpreted. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

// Key composes a cache key as namespace:op:args. Callers are responsible for
// normalizing free-text parts (lower-casing queries, including page numbers)
// so distinct lookups never collide.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Through is the single read-through decorator applied at every cached call
// site: consult the cache, fall through to fetch on a miss, store the result
// with the given TTL. fetch errors are returned untouched and nothing is
// cached for them.
func Through[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	if c.Get(ctx, key, &cached) {
		return cached, nil
	}
	fresh, err := fetch(ctx)
	if err != nil {
		return fresh, err
	}
	c.Set(ctx, key, fresh, ttl)
	return fresh, nil
}

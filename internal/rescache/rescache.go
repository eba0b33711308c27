// Package rescache implements the read-through cache protocol shared by all
// resource services: point lookups by id are cached as response-shaped JSON
// under "{resource}:{id}" keys with a fixed TTL, writes overwrite the entry
// unconditionally, and deletes drop it. The cache is a derived view of the
// repository, never a source of truth.
package rescache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamEzaz/baribhara/internal/observability/metrics"
)

// DefaultTTL bounds staleness of a cache entry when invalidation is lost.
const DefaultTTL = 3600 * time.Second

// Store is the key-value backend. Fetch reports a missing key with found=false
// rather than an error; any error it does return is an infrastructure failure
// and propagates to the caller.
type Store interface {
	Fetch(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache caches response payloads of type T for a single resource type.
type Cache[T any] struct {
	store    Store
	resource string
	ttl      time.Duration
}

// New creates a cache namespaced to the given resource type ("user",
// "property", ...). A non-positive ttl falls back to DefaultTTL.
func New[T any](store Store, resource string, ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{store: store, resource: resource, ttl: ttl}
}

// Key returns the namespaced cache key for an id.
func (c *Cache[T]) Key(id string) string {
	return c.resource + ":" + id
}

// Get returns the cached payload for id, reporting found=false on a miss.
func (c *Cache[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var out T

	raw, found, err := c.store.Fetch(ctx, c.Key(id))
	if err != nil {
		return out, false, fmt.Errorf("cache fetch %s: %w", c.Key(id), err)
	}
	if !found {
		metrics.ObserveCacheLookup(c.resource, "miss")
		return out, false, nil
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false, fmt.Errorf("cache decode %s: %w", c.Key(id), err)
	}
	metrics.ObserveCacheLookup(c.resource, "hit")
	return out, true, nil
}

// GetOrFetch is the read path: a cache hit is returned without consulting the
// source of truth; on a miss the fetch function is called and its result is
// stored under the id before being returned. Hit and miss return byte-identical
// payload shapes because the cache stores the already-mapped response.
func (c *Cache[T]) GetOrFetch(ctx context.Context, id string, fetch func() (T, error)) (T, error) {
	cached, found, err := c.Get(ctx, id)
	if err != nil {
		return cached, err
	}
	if found {
		return cached, nil
	}

	fetched, err := fetch()
	if err != nil {
		return fetched, err
	}
	if err := c.Put(ctx, id, fetched); err != nil {
		return fetched, err
	}
	return fetched, nil
}

// Put overwrites the cache entry for id with the response payload. Called
// after every successful write so stale reads are never served post-write.
func (c *Cache[T]) Put(ctx context.Context, id string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", c.Key(id), err)
	}
	if err := c.store.Set(ctx, c.Key(id), string(raw), c.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", c.Key(id), err)
	}
	return nil
}

// Drop removes the cache entry for id. A missing entry is not an error.
func (c *Cache[T]) Drop(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.Key(id)); err != nil {
		return fmt.Errorf("cache delete %s: %w", c.Key(id), err)
	}
	return nil
}

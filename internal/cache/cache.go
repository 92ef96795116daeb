// Package cache is a thin JSON cache in front of the heavier read paths
// (review summaries, search results). Redis-backed when configured, no-op
// otherwise.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get unmarshals the cached value into dst, reporting whether the key
	// was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Noop satisfies Cache when no backend is configured: every read misses.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string, dst any) (bool, error)       { return false, nil }
func (Noop) Set(ctx context.Context, key string, v any, ttl time.Duration) error { return nil }
func (Noop) Del(ctx context.Context, keys ...string) error                    { return nil }

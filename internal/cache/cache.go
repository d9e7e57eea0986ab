// Package cache defines the response-cache engine for search and map results.
//
// Cached entries are keyed under a corpus generation counter; bumping the
// generation orphans every entry at once, which is how directory-change
// events invalidate without enumerating keys.
package cache

import (
	"context"
	"time"
)

type Interface interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// Generation reads the current corpus generation.
	Generation(ctx context.Context) (uint64, error)
	// BumpGeneration advances it, orphaning all cached responses.
	BumpGeneration(ctx context.Context) (uint64, error)
}

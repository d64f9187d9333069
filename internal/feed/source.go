package feed

import (
	"context"
	"time"

	"github.com/openbookhq/flipper/internal/domain"
	"github.com/openbookhq/flipper/internal/exchange"
)

// CachedDepthClient wraps an exchange.Client so depth queries are served
// from a live DepthCache when the cached snapshot is fresh enough, falling
// back to the underlying REST call otherwise. All other operations pass
// through unchanged.
type CachedDepthClient struct {
	exchange.Client
	cache    *DepthCache
	maxStale time.Duration
	now      func() time.Time
}

// NewCachedDepthClient wraps client with cache. maxStale bounds how old a
// cached snapshot may be before the REST fallback is used.
func NewCachedDepthClient(client exchange.Client, cache *DepthCache, maxStale time.Duration) *CachedDepthClient {
	return &CachedDepthClient{
		Client:   client,
		cache:    cache,
		maxStale: maxStale,
		now:      time.Now,
	}
}

// GetDepth serves from the cache when possible. Cached snapshots may carry
// more levels than limit; they are truncated to match the REST contract.
func (c *CachedDepthClient) GetDepth(ctx context.Context, side domain.BookSide, limit int) (domain.DepthSnapshot, error) {
	if snap, ok := c.cache.Get(side, c.maxStale, c.now()); ok {
		if limit > 0 && len(snap.Levels) > limit {
			snap.Levels = snap.Levels[:limit]
		}
		return snap, nil
	}
	return c.Client.GetDepth(ctx, side, limit)
}

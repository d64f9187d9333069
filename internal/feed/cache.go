// Package feed maintains live order-book depth snapshots streamed from the
// gateway WebSocket, so the trading loop can avoid a REST round-trip per
// tick when fresh data is already on hand.
package feed

import (
	"sync"
	"time"

	"github.com/openbookhq/flipper/internal/domain"
)

// DepthCache holds the most recent depth snapshot per book side along with
// the time it was received. It is safe for concurrent use: the WebSocket
// read loop writes, the trading loop reads.
type DepthCache struct {
	mu         sync.RWMutex
	snapshots  map[domain.BookSide]domain.DepthSnapshot
	receivedAt map[domain.BookSide]time.Time
}

// NewDepthCache creates an empty cache.
func NewDepthCache() *DepthCache {
	return &DepthCache{
		snapshots:  make(map[domain.BookSide]domain.DepthSnapshot),
		receivedAt: make(map[domain.BookSide]time.Time),
	}
}

// Put stores snap as the current view of its side.
func (c *DepthCache) Put(snap domain.DepthSnapshot, receivedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snap.Side] = snap
	c.receivedAt[snap.Side] = receivedAt
}

// Get returns the cached snapshot for side if one was received within
// maxAge of now. The second return is false when the cache is empty for
// that side or the entry is stale.
func (c *DepthCache) Get(side domain.BookSide, maxAge time.Duration, now time.Time) (domain.DepthSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[side]
	if !ok {
		return domain.DepthSnapshot{}, false
	}
	if now.Sub(c.receivedAt[side]) > maxAge {
		return domain.DepthSnapshot{}, false
	}
	return snap, true
}

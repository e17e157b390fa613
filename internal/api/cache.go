package api

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gamepilot/gamepilot/internal/domain"
	"github.com/gamepilot/gamepilot/internal/infra/metrics"
)

const (
	defaultCacheSize = 1024
	defaultCacheTTL  = 5 * time.Minute
)

// cacheEntry holds a snapshot along with the time it stops being valid.
type cacheEntry struct {
	snapshot  domain.PersonaSnapshot
	expiresAt time.Time
}

// snapshotCache keeps the latest default snapshot (stored signals plus the
// latest recent mood) per user. Entries expire after ttl, or earlier when
// the mood they embed goes stale, and are dropped whenever the user's
// signals or moods change. Callers serialize access per user.
type snapshotCache struct {
	cache *lru.Cache[string, cacheEntry]
	ttl   time.Duration
	now   func() time.Time
}

func newSnapshotCache(size int, ttl time.Duration) *snapshotCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	// lru.New only errors on non-positive size which we guard above.
	cache, _ := lru.New[string, cacheEntry](size)
	return &snapshotCache{cache: cache, ttl: ttl, now: time.Now}
}

func (c *snapshotCache) get(userID string) (domain.PersonaSnapshot, bool) {
	entry, ok := c.cache.Get(userID)
	if ok && c.now().Before(entry.expiresAt) {
		metrics.SnapshotCacheHits.WithLabelValues("hit").Inc()
		return entry.snapshot, true
	}
	if ok {
		c.cache.Remove(userID)
	}
	metrics.SnapshotCacheHits.WithLabelValues("miss").Inc()
	return domain.PersonaSnapshot{}, false
}

// put stores snap until ttl elapses or until, when non-zero, whichever
// comes first.
func (c *snapshotCache) put(userID string, snap domain.PersonaSnapshot, until time.Time) {
	expires := c.now().Add(c.ttl)
	if !until.IsZero() && until.Before(expires) {
		expires = until
	}
	c.cache.Add(userID, cacheEntry{snapshot: snap, expiresAt: expires})
}

func (c *snapshotCache) invalidate(userID string) {
	c.cache.Remove(userID)
}

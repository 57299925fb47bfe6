package router

import (
	"sync"
	"time"
)

// moderatorCache memoizes moderator lookups so a burst of flag
// reactions does not hammer the database. Entries expire after ttl.
type moderatorCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	guildID  int64
	memberID int64
}

type cacheEntry struct {
	isModerator bool
	expires     time.Time
}

func newModeratorCache(ttl time.Duration) *moderatorCache {
	return &moderatorCache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

func (c *moderatorCache) get(guildID, memberID int64) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey{guildID, memberID}]
	if !ok || time.Now().After(e.expires) {
		return false, false
	}
	return e.isModerator, true
}

func (c *moderatorCache) set(guildID, memberID int64, isModerator bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{guildID, memberID}] = cacheEntry{
		isModerator: isModerator,
		expires:     time.Now().Add(c.ttl),
	}
}

// invalidate drops a member's cached verdict, used when the moderator
// registry changes.
func (c *moderatorCache) invalidate(guildID, memberID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{guildID, memberID})
}

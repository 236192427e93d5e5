package phira

import (
	"context"
	"sync"
	"time"

	"github.com/udisondev/phira-mp/internal/metrics"
)

const (
	cacheCapacity = 1000
	cacheTTL      = 300 * time.Second
)

type cacheEntry struct {
	info    UserInfo
	expires time.Time
}

// CachedFetcher memoizes user lookups by token with a fixed-capacity TTL
// cache, so reconnecting clients do not hammer the identity service.
// Chart and record lookups pass through uncached.
type CachedFetcher struct {
	Fetcher

	mu      sync.Mutex
	entries map[string]cacheEntry
	cap     int
	ttl     time.Duration
	now     func() time.Time
}

// NewCachedFetcher wraps f with the token cache.
func NewCachedFetcher(f Fetcher) *CachedFetcher {
	return &CachedFetcher{
		Fetcher: f,
		entries: make(map[string]cacheEntry),
		cap:     cacheCapacity,
		ttl:     cacheTTL,
		now:     time.Now,
	}
}

// GetUserInfo returns the cached profile for token when fresh, otherwise
// fetches and caches it. Only successful lookups are cached.
func (c *CachedFetcher) GetUserInfo(ctx context.Context, token string) (UserInfo, error) {
	c.mu.Lock()
	if e, ok := c.entries[token]; ok {
		if c.now().Before(e.expires) {
			c.mu.Unlock()
			metrics.IdentityCacheHits.Inc()
			return e.info, nil
		}
		delete(c.entries, token)
	}
	c.mu.Unlock()

	metrics.IdentityCacheMisses.Inc()
	info, err := c.Fetcher.GetUserInfo(ctx, token)
	if err != nil {
		return UserInfo{}, err
	}

	c.mu.Lock()
	if len(c.entries) >= c.cap {
		c.evictSoonest()
	}
	c.entries[token] = cacheEntry{info: info, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return info, nil
}

// evictSoonest drops the entry closest to expiry. Called with mu held.
func (c *CachedFetcher) evictSoonest() {
	var (
		victim string
		oldest time.Time
	)
	for token, e := range c.entries {
		if victim == "" || e.expires.Before(oldest) {
			victim, oldest = token, e.expires
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

package explain

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/nisdos/shellsig/internal/model"
)

// Cache caches explanations keyed by session, with the failure context
// (shell, status, recent output) hashed for comparison. When the same
// failure repeats in a session, the cached explanation is reused and the
// LLM call is skipped.
//
// Cache entries have a TTL. After expiry, the failure is re-explained
// even if the context is identical.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry // keyed by session
	ttl     time.Duration
}

type cacheEntry struct {
	contextHash string
	explanation model.Explanation
	cachedAt    time.Time
	hitCount    int
}

// NewCache creates a cache with the given TTL.
// A TTL of 0 disables caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
}

// Lookup checks for a valid cached explanation for the given session and request.
// Returns the cached explanation and true if found and valid, nil and false otherwise.
func (c *Cache) Lookup(session string, req Request) (*model.Explanation, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	hash := hashRequest(req)

	c.mu.RLock()
	entry, ok := c.entries[session]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	// Different failure context, cache miss
	if entry.contextHash != hash {
		return nil, false
	}

	// TTL expired, cache miss; drop the stale entry
	if time.Since(entry.cachedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, session)
		c.mu.Unlock()
		return nil, false
	}

	// Cache hit
	c.mu.Lock()
	entry.hitCount++
	c.mu.Unlock()

	e := entry.explanation
	return &e, true
}

// Store saves an explanation for the given session and request.
func (c *Cache) Store(session string, req Request, explanation model.Explanation) {
	if c.ttl <= 0 {
		return
	}

	hash := hashRequest(req)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[session] = &cacheEntry{
		contextHash: hash,
		explanation: explanation,
		cachedAt:    time.Now(),
	}
}

// Invalidate removes the cache entry for the given session.
func (c *Cache) Invalidate(session string) {
	c.mu.Lock()
	delete(c.entries, session)
	c.mu.Unlock()
}

// hashRequest returns a hex-encoded SHA256 hash of the failure context.
func hashRequest(req Request) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d\x00%s", req.Shell, req.Status, req.Output)))
	return fmt.Sprintf("%x", h)
}

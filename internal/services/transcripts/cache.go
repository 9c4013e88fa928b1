package transcripts

import (
	"sync"
	"time"

	"github.com/voxnote/transcript-api/internal/models"
)

// DefaultCacheTTL bounds how long a single-transcript fetch may be served
// from memory.
const DefaultCacheTTL = 5 * time.Minute

// Cache shields the remote store from repeated single-transcript reads
// within a short window. It is process-local; any mutation to a transcript
// must evict its entry immediately, TTL notwithstanding.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	transcript *models.Transcript
	fetchedAt  time.Time
}

// NewCache creates a cache with the given TTL. A non-positive TTL falls
// back to the default.
func NewCache(ttl time.Duration) *Cache {
	return NewCacheWithClock(ttl, time.Now)
}

// NewCacheWithClock creates a cache with an injected clock so tests can
// advance time deterministically.
func NewCacheWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached transcript if the entry is still fresh
func (c *Cache) Get(id string) (*models.Transcript, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[id]
	if !exists || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.transcript, true
}

// Set stores a transcript with a fresh fetch timestamp. Expired entries are
// swept opportunistically here rather than by a timer.
func (c *Cache) Set(id string, transcript *models.Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.fetchedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}

	c.entries[id] = &cacheEntry{
		transcript: transcript,
		fetchedAt:  now,
	}
}

// Invalidate evicts one entry. Called on every mutation so stale reads
// after a known local change cannot happen inside the TTL window.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, id)
}

// Len reports the number of entries currently held, fresh or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

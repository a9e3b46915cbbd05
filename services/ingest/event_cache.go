package ingest

import (
	"container/list"
	"sync"
	"time"

	"github.com/kushwahaamar-dev/sentinel/models"
)

// cacheEntry represents a single cache entry with TTL
type cacheEntry struct {
	fingerprint string
	event       models.SourceEvent
	insertedAt  time.Time
	element     *list.Element // For LRU tracking
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry) isExpired(ttl time.Duration) bool {
	return time.Since(e.insertedAt) > ttl
}

// EventCache is an in-memory LRU cache with TTL holding the most
// recently ingested live events, keyed by fingerprint. The analyze
// endpoint resolves fingerprints against it so an operator can target
// an event seen on the board without re-fetching the feeds.
// Thread-safe implementation using sync.RWMutex
type EventCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	lruList *list.List // Doubly linked list for LRU tracking
	maxSize int        // Maximum number of entries
	ttl     time.Duration
	hits    uint64
	misses  uint64
}

// NewEventCache creates a new EventCache with specified max size and TTL
func NewEventCache(maxSize int, ttl time.Duration) *EventCache {
	return &EventCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get retrieves an event from cache by fingerprint
// Returns false if not found or expired
func (c *EventCache) Get(fingerprint string) (models.SourceEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[fingerprint]
	if !exists || entry.isExpired(c.ttl) {
		c.misses++
		if exists {
			c.removeEntry(fingerprint)
		}
		return models.SourceEvent{}, false
	}

	// Move to front (most recently used)
	c.lruList.MoveToFront(entry.element)
	c.hits++

	return entry.event, true
}

// Put stores an event in cache under its fingerprint
func (c *EventCache) Put(fingerprint string, event models.SourceEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[fingerprint]; exists {
		entry.event = event
		entry.insertedAt = time.Now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	// Evict least recently used entry if cache is full
	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &cacheEntry{
		fingerprint: fingerprint,
		event:       event,
		insertedAt:  time.Now(),
	}
	entry.element = c.lruList.PushFront(fingerprint)
	c.entries[fingerprint] = entry
}

// Events returns the cached events, most recently used first.
func (c *EventCache) Events() []models.SourceEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	events := make([]models.SourceEvent, 0, c.lruList.Len())
	for el := c.lruList.Front(); el != nil; el = el.Next() {
		fingerprint := el.Value.(string)
		if entry, exists := c.entries[fingerprint]; exists && !entry.isExpired(c.ttl) {
			events = append(events, entry.event)
		}
	}
	return events
}

// Clear removes all entries from the cache
func (c *EventCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.lruList.Init()
}

// Stats returns cache statistics
func (c *EventCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheStats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
}

// removeEntry removes an entry from the cache (must be called with lock held)
func (c *EventCache) removeEntry(fingerprint string) {
	if entry, exists := c.entries[fingerprint]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, fingerprint)
	}
}

// evictLRU evicts the least recently used entry (must be called with lock held)
func (c *EventCache) evictLRU() {
	backElement := c.lruList.Back()
	if backElement != nil {
		fingerprint := backElement.Value.(string)
		c.lruList.Remove(backElement)
		delete(c.entries, fingerprint)
	}
}

// CleanupExpired removes all expired entries
// Should be called periodically in a background goroutine
func (c *EventCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	expired := make([]string, 0)
	for fingerprint, entry := range c.entries {
		if entry.isExpired(c.ttl) {
			expired = append(expired, fingerprint)
		}
	}
	for _, fingerprint := range expired {
		c.removeEntry(fingerprint)
	}
	return len(expired)
}

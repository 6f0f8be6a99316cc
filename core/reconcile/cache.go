package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cachedDocument holds the raw bytes of a fetched configuration document.
type cachedDocument struct {
	// Data is the document content.
	Data []byte

	// Fetched is the time the document was read from its source.
	Fetched time.Time

	// TTL is the time-to-live of this entry.
	TTL time.Duration
}

// IsExpired returns true if this entry has outlived its TTL.
func (d *cachedDocument) IsExpired() bool {
	if d.TTL == 0 {
		return true // No caching
	}
	return time.Since(d.Fetched) > d.TTL
}

// Cache wraps a FetchFunc with a per-location TTL cache.
// Concurrent misses for the same location share one fetch.
type Cache struct {
	fetch FetchFunc
	ttl   time.Duration

	mu   sync.RWMutex
	docs map[string]*cachedDocument
	sf   singleflight.Group
}

// NewCache creates a cache in front of fetch. A zero ttl disables caching
// but still collapses concurrent fetches of the same location.
func NewCache(fetch FetchFunc, ttl time.Duration) *Cache {
	return &Cache{
		fetch: fetch,
		ttl:   ttl,
		docs:  make(map[string]*cachedDocument),
	}
}

// Fetch returns the cached document for location, fetching it when absent or expired.
// It has the FetchFunc signature so it can be handed to LoadValidators.
func (c *Cache) Fetch(ctx context.Context, location string) ([]byte, error) {
	// Fast path: fresh entry
	c.mu.RLock()
	doc, exists := c.docs[location]
	c.mu.RUnlock()

	if exists && !doc.IsExpired() {
		return doc.Data, nil
	}

	// Slow path: fetch using singleflight to prevent stampedes
	result, err, _ := c.sf.Do(location, func() (interface{}, error) {
		c.mu.RLock()
		doc, exists := c.docs[location]
		c.mu.RUnlock()

		if exists && !doc.IsExpired() {
			return doc.Data, nil
		}

		data, err := c.fetch(ctx, location)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.docs[location] = &cachedDocument{Data: data, Fetched: time.Now(), TTL: c.ttl}
		c.mu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// Fresh bypasses the cache, fetches location and stores the result.
func (c *Cache) Fresh(ctx context.Context, location string) ([]byte, error) {
	data, err := c.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.docs[location] = &cachedDocument{Data: data, Fetched: time.Now(), TTL: c.ttl}
	c.mu.Unlock()
	return data, nil
}

// Invalidate removes the entry for location.
func (c *Cache) Invalidate(location string) {
	c.mu.Lock()
	delete(c.docs, location)
	c.mu.Unlock()
}

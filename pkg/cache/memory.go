package cache

import (
	"context"
	"sync"
	"time"
)

// cacheEntry represents a single cache entry with expiration
type cacheEntry struct {
	doc       Document
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the Cache interface
type MemoryCache struct {
	data map[string]*cacheEntry
	mu   sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache with background cleanup
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]*cacheEntry),
	}

	// Start background cleanup goroutine
	go cache.cleanup()

	return cache
}

// Set stores a document in the cache with the specified TTL
func (m *MemoryCache) Set(ctx context.Context, key string, doc *Document, ttl time.Duration) error {
	html := make([]byte, len(doc.HTML))
	copy(html, doc.HTML)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = &cacheEntry{
		doc:       Document{HTML: html, CreatedAt: doc.CreatedAt},
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Get retrieves a document from the cache
func (m *MemoryCache) Get(ctx context.Context, key string) (*Document, error) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrCacheNotFound
	}

	// Check if expired
	if time.Now().After(entry.expiresAt) {
		// Clean up expired entry
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return nil, ErrCacheExpired
	}

	doc := entry.doc
	return &doc, nil
}

// cleanup runs periodically to remove expired entries
func (m *MemoryCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		m.mu.Lock()

		for key, entry := range m.data {
			if now.After(entry.expiresAt) {
				delete(m.data, key)
			}
		}

		m.mu.Unlock()
	}
}

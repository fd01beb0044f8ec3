// Copyright 2025 Hush Network

package cache

import "sync"

// KeyGenerationDocument is the JSON-document shape cached per group
// (spec.md §4.6 "Key generations"), populated by the gRPC key-gen read
// path and invalidated wholesale on rotation.
type KeyGenerationDocument struct {
	FeedID            string
	CurrentGeneration int64
	ValidFromBlock    uint64
}

// KeyGenerationCache caches the current key-generation document per feed.
type KeyGenerationCache struct {
	mu    sync.RWMutex
	byFeed map[string]*KeyGenerationDocument
}

// NewKeyGenerationCache creates an empty key-generation cache.
func NewKeyGenerationCache() *KeyGenerationCache {
	return &KeyGenerationCache{byFeed: make(map[string]*KeyGenerationDocument)}
}

// Get returns the cached key-generation document for a feed.
func (c *KeyGenerationCache) Get(feedID string) (*KeyGenerationDocument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.byFeed[feedID]
	return doc, ok
}

// Populate stores the key-generation document for a feed, overwriting
// any stale entry.
func (c *KeyGenerationCache) Populate(doc *KeyGenerationDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byFeed[doc.FeedID] = doc
}

// Invalidate drops the cached document, forcing the next reader to
// repopulate from the store (called on every rotation).
func (c *KeyGenerationCache) Invalidate(feedID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byFeed, feedID)
}

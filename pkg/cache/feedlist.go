// Copyright 2025 Hush Network
//
// Package cache holds the process-wide derived-view caches sitting in
// front of the feeds store. Every cache is concurrency-safe and
// best-effort: write failures never block a handler, and read misses
// fall back to the store and repopulate the cache opportunistically.

package cache

import (
	"sync"
	"time"
)

// cachedSet is a TTL-bounded set of strings, the shape shared by the
// user-feed-list and feed-participants caches.
type cachedSet struct {
	members   map[string]struct{}
	cachedAt  time.Time
	expiresAt time.Time
}

// FeedListCache caches, per user address, the set of feed ids the user
// currently participates in (spec.md §4.6 "User feed list").
type FeedListCache struct {
	mu   sync.RWMutex
	sets map[string]*cachedSet
	ttl  time.Duration
}

// NewFeedListCache creates a feed-list cache with the given per-entry TTL.
func NewFeedListCache(ttl time.Duration) *FeedListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FeedListCache{
		sets: make(map[string]*cachedSet),
		ttl:  ttl,
	}
}

// Get returns the cached feed-id set for a user, and whether it was a hit.
func (c *FeedListCache) Get(userAddress string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sets[userAddress]
	if !ok || time.Now().After(s.expiresAt) {
		return nil, false
	}
	out := make([]string, 0, len(s.members))
	for id := range s.members {
		out = append(out, id)
	}
	return out, true
}

// Populate replaces the cached set for a user, e.g. after a cache-aside
// miss on a list request.
func (c *FeedListCache) Populate(userAddress string, feedIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &cachedSet{
		members:   make(map[string]struct{}, len(feedIDs)),
		cachedAt:  time.Now(),
		expiresAt: time.Now().Add(c.ttl),
	}
	for _, id := range feedIDs {
		s.members[id] = struct{}{}
	}
	c.sets[userAddress] = s
}

// Add inserts a feed id into a user's cached set in-place. A no-op if the
// user has no cached entry yet (the next list request will populate it).
func (c *FeedListCache) Add(userAddress, feedID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sets[userAddress]
	if !ok || time.Now().After(s.expiresAt) {
		return
	}
	s.members[feedID] = struct{}{}
}

// Remove deletes a feed id from a user's cached set in-place.
func (c *FeedListCache) Remove(userAddress, feedID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sets[userAddress]
	if !ok {
		return
	}
	delete(s.members, feedID)
}

// Invalidate drops a user's cached set entirely.
func (c *FeedListCache) Invalidate(userAddress string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sets, userAddress)
}

// PruneExpired removes every expired entry.
func (c *FeedListCache) PruneExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, s := range c.sets {
		if now.After(s.expiresAt) {
			delete(c.sets, k)
		}
	}
}

// ParticipantsCache caches, per feed id, the set of active participant
// addresses (spec.md §4.6 "Feed participants"). Session-scoped: entries
// never expire on their own, only on explicit invalidation.
type ParticipantsCache struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

// NewParticipantsCache creates an empty participants cache.
func NewParticipantsCache() *ParticipantsCache {
	return &ParticipantsCache{sets: make(map[string]map[string]struct{})}
}

// Get returns the cached participant set for a feed, and whether it was a hit.
func (c *ParticipantsCache) Get(feedID string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	members, ok := c.sets[feedID]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(members))
	for addr := range members {
		out = append(out, addr)
	}
	return out, true
}

// Populate replaces the cached participant set for a feed.
func (c *ParticipantsCache) Populate(feedID string, addresses []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	members := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		members[a] = struct{}{}
	}
	c.sets[feedID] = members
}

// Add inserts one address into a feed's cached participant set, synchronously,
// as required on Join (spec.md §4.6 ordering invariant).
func (c *ParticipantsCache) Add(feedID, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	members, ok := c.sets[feedID]
	if !ok {
		return
	}
	members[address] = struct{}{}
}

// Remove deletes one address from a feed's cached participant set.
func (c *ParticipantsCache) Remove(feedID, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	members, ok := c.sets[feedID]
	if !ok {
		return
	}
	delete(members, address)
}

// Invalidate drops a feed's entire cached participant set, used on
// membership-changing key rotations.
func (c *ParticipantsCache) Invalidate(feedID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sets, feedID)
}

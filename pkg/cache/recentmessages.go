// Copyright 2025 Hush Network

package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RecentMessage is the minimal shape cached per feed message; the cache
// does not decrypt or interpret ciphertext.
type RecentMessage struct {
	MessageID  string
	BlockIndex uint64
	Ciphertext []byte
}

// feedMessages is a capped, ordered ring of the most recent messages for
// one feed (newest last).
type feedMessages struct {
	mu    sync.Mutex
	items []RecentMessage
	cap   int
}

func newFeedMessages(cap int) *feedMessages {
	return &feedMessages{items: make([]RecentMessage, 0, cap), cap: cap}
}

func (f *feedMessages) push(m RecentMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append(f.items, m)
	if len(f.items) > f.cap {
		f.items = f.items[len(f.items)-f.cap:]
	}
}

func (f *feedMessages) snapshot() []RecentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]RecentMessage, len(f.items))
	copy(out, f.items)
	return out
}

// RecentMessagesCache caches an ordered, capped window of recent messages
// per feed (spec.md §4.6 "Recent messages"). The outer LRU bounds the
// number of distinct feeds held in memory; each feed's own message window
// is capped independently.
type RecentMessagesCache struct {
	feeds    *lru.Cache[string, *feedMessages]
	perFeed  int
}

// NewRecentMessagesCache creates a cache holding up to maxFeeds distinct
// feeds, each capped at perFeedCap recent messages.
func NewRecentMessagesCache(maxFeeds, perFeedCap int) *RecentMessagesCache {
	if maxFeeds <= 0 {
		maxFeeds = 1000
	}
	if perFeedCap <= 0 {
		perFeedCap = 200
	}
	l, _ := lru.New[string, *feedMessages](maxFeeds)
	return &RecentMessagesCache{feeds: l, perFeed: perFeedCap}
}

// Push appends a message to a feed's cached window (write-through, called
// best-effort after every message insert).
func (c *RecentMessagesCache) Push(feedID string, m RecentMessage) {
	fm, ok := c.feeds.Get(feedID)
	if !ok {
		fm = newFeedMessages(c.perFeed)
		c.feeds.Add(feedID, fm)
	}
	fm.push(m)
}

// Get returns the cached message window for a feed, newest last, and
// whether the feed had a cache entry at all (cache-aside miss signal).
func (c *RecentMessagesCache) Get(feedID string) ([]RecentMessage, bool) {
	fm, ok := c.feeds.Get(feedID)
	if !ok {
		return nil, false
	}
	return fm.snapshot(), true
}

// Populate seeds a feed's cached window from a store read on cache miss.
func (c *RecentMessagesCache) Populate(feedID string, messages []RecentMessage) {
	fm := newFeedMessages(c.perFeed)
	for _, m := range messages {
		fm.push(m)
	}
	c.feeds.Add(feedID, fm)
}

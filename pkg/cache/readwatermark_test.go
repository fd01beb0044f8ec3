// Copyright 2025 Hush Network

package cache

import (
	"testing"
	"time"
)

func TestReadWatermarkCacheAdvanceMaxWins(t *testing.T) {
	c := NewReadWatermarkCache(time.Minute)

	c.AdvanceMaxWins("alice", "feed-1", 10)
	block, ok := c.Get("alice", "feed-1")
	if !ok || block != 10 {
		t.Fatalf("Get() = %d, ok=%v, want 10", block, ok)
	}

	// A lower proposed watermark must not regress the cached value.
	c.AdvanceMaxWins("alice", "feed-1", 5)
	block, _ = c.Get("alice", "feed-1")
	if block != 10 {
		t.Fatalf("block = %d, want max-wins to keep 10", block)
	}

	c.AdvanceMaxWins("alice", "feed-1", 20)
	block, _ = c.Get("alice", "feed-1")
	if block != 20 {
		t.Fatalf("block = %d, want 20 after a higher watermark", block)
	}
}

func TestReadWatermarkCacheExpires(t *testing.T) {
	c := NewReadWatermarkCache(time.Millisecond)
	c.AdvanceMaxWins("alice", "feed-1", 10)

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("alice", "feed-1"); ok {
		t.Fatal("expected entry to expire after its TTL")
	}
}

func TestReadWatermarkCachePruneExpired(t *testing.T) {
	c := NewReadWatermarkCache(time.Millisecond)
	c.AdvanceMaxWins("alice", "feed-1", 10)
	time.Sleep(5 * time.Millisecond)

	c.PruneExpired()

	c.mu.RLock()
	_, present := c.byUser["alice"]
	c.mu.RUnlock()
	if present {
		t.Fatal("expected PruneExpired to remove the expired user entry")
	}
}

// Copyright 2025 Hush Network

package cache

import (
	"testing"
	"time"
)

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestFeedListCachePopulateAndGet(t *testing.T) {
	c := NewFeedListCache(time.Minute)
	c.Populate("alice", []string{"feed-1", "feed-2"})

	got, ok := c.Get("alice")
	if !ok {
		t.Fatal("expected cache hit after Populate")
	}
	if len(got) != 2 || !containsString(got, "feed-1") || !containsString(got, "feed-2") {
		t.Fatalf("Get() = %v, want [feed-1 feed-2]", got)
	}
}

func TestFeedListCacheMissWhenAbsent(t *testing.T) {
	c := NewFeedListCache(time.Minute)
	if _, ok := c.Get("nobody"); ok {
		t.Fatal("expected cache miss for an unpopulated user")
	}
}

func TestFeedListCacheExpires(t *testing.T) {
	c := NewFeedListCache(time.Millisecond)
	c.Populate("alice", []string{"feed-1"})

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("alice"); ok {
		t.Fatal("expected entry to expire after its TTL")
	}
}

func TestFeedListCacheAddAndRemove(t *testing.T) {
	c := NewFeedListCache(time.Minute)
	c.Populate("alice", []string{"feed-1"})

	c.Add("alice", "feed-2")
	got, _ := c.Get("alice")
	if !containsString(got, "feed-2") {
		t.Fatalf("Add() did not insert feed-2, got %v", got)
	}

	c.Remove("alice", "feed-1")
	got, _ = c.Get("alice")
	if containsString(got, "feed-1") {
		t.Fatalf("Remove() did not delete feed-1, got %v", got)
	}
}

func TestFeedListCacheAddIsNoopWithoutEntry(t *testing.T) {
	c := NewFeedListCache(time.Minute)
	c.Add("ghost", "feed-1")
	if _, ok := c.Get("ghost"); ok {
		t.Fatal("Add() should not create an entry for an uncached user")
	}
}

func TestFeedListCacheInvalidate(t *testing.T) {
	c := NewFeedListCache(time.Minute)
	c.Populate("alice", []string{"feed-1"})
	c.Invalidate("alice")

	if _, ok := c.Get("alice"); ok {
		t.Fatal("expected cache miss after Invalidate")
	}
}

func TestFeedListCachePruneExpired(t *testing.T) {
	c := NewFeedListCache(time.Millisecond)
	c.Populate("alice", []string{"feed-1"})
	time.Sleep(5 * time.Millisecond)

	c.PruneExpired()

	c.mu.RLock()
	_, present := c.sets["alice"]
	c.mu.RUnlock()
	if present {
		t.Fatal("expected PruneExpired to remove the expired entry")
	}
}

func TestParticipantsCachePopulateAddRemoveInvalidate(t *testing.T) {
	c := NewParticipantsCache()

	if _, ok := c.Get("feed-1"); ok {
		t.Fatal("expected miss before Populate")
	}

	c.Populate("feed-1", []string{"alice", "bob"})
	got, ok := c.Get("feed-1")
	if !ok || len(got) != 2 {
		t.Fatalf("Get() = %v, ok=%v, want 2 members", got, ok)
	}

	c.Add("feed-1", "carol")
	got, _ = c.Get("feed-1")
	if !containsString(got, "carol") {
		t.Fatalf("Add() did not insert carol, got %v", got)
	}

	c.Remove("feed-1", "bob")
	got, _ = c.Get("feed-1")
	if containsString(got, "bob") {
		t.Fatalf("Remove() did not delete bob, got %v", got)
	}

	c.Invalidate("feed-1")
	if _, ok := c.Get("feed-1"); ok {
		t.Fatal("expected miss after Invalidate")
	}
}

func TestParticipantsCacheAddWithoutEntryIsNoop(t *testing.T) {
	c := NewParticipantsCache()
	c.Add("feed-1", "alice")
	if _, ok := c.Get("feed-1"); ok {
		t.Fatal("Add() should not create an entry for an uncached feed")
	}
}

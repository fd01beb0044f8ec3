// Copyright 2025 Hush Network

package cache

import "testing"

func TestRecentMessagesCachePushAndGet(t *testing.T) {
	c := NewRecentMessagesCache(10, 3)

	if _, ok := c.Get("feed-1"); ok {
		t.Fatal("expected miss before any Push")
	}

	c.Push("feed-1", RecentMessage{MessageID: "m1", BlockIndex: 1})
	c.Push("feed-1", RecentMessage{MessageID: "m2", BlockIndex: 2})

	got, ok := c.Get("feed-1")
	if !ok || len(got) != 2 {
		t.Fatalf("Get() = %v, ok=%v, want 2 messages", got, ok)
	}
	if got[0].MessageID != "m1" || got[1].MessageID != "m2" {
		t.Fatalf("expected newest-last order, got %+v", got)
	}
}

func TestRecentMessagesCachePerFeedCapEvictsOldest(t *testing.T) {
	c := NewRecentMessagesCache(10, 2)

	c.Push("feed-1", RecentMessage{MessageID: "m1"})
	c.Push("feed-1", RecentMessage{MessageID: "m2"})
	c.Push("feed-1", RecentMessage{MessageID: "m3"})

	got, _ := c.Get("feed-1")
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (capped)", len(got))
	}
	if got[0].MessageID != "m2" || got[1].MessageID != "m3" {
		t.Fatalf("expected oldest message evicted, got %+v", got)
	}
}

func TestRecentMessagesCachePopulateReplacesWindow(t *testing.T) {
	c := NewRecentMessagesCache(10, 5)
	c.Push("feed-1", RecentMessage{MessageID: "stale"})

	c.Populate("feed-1", []RecentMessage{{MessageID: "a"}, {MessageID: "b"}})

	got, ok := c.Get("feed-1")
	if !ok || len(got) != 2 {
		t.Fatalf("Get() = %v, ok=%v, want 2 messages after Populate", got, ok)
	}
}

func TestRecentMessagesCacheMaxFeedsEvictsLRU(t *testing.T) {
	c := NewRecentMessagesCache(2, 5)
	c.Push("feed-1", RecentMessage{MessageID: "a"})
	c.Push("feed-2", RecentMessage{MessageID: "b"})
	c.Push("feed-3", RecentMessage{MessageID: "c"})

	if _, ok := c.Get("feed-1"); ok {
		t.Fatal("expected feed-1 to be evicted once maxFeeds was exceeded")
	}
	if _, ok := c.Get("feed-3"); !ok {
		t.Fatal("expected the most recently pushed feed to remain cached")
	}
}

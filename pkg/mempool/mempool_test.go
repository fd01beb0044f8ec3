// Copyright 2025 Hush Network

package mempool

import (
	"context"
	"testing"
	"time"
)

func TestQueuedMempoolSubmitAndDrain(t *testing.T) {
	m := NewQueuedMempool(4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := m.SubmitVerified(ctx, []byte{byte(i)}); err != nil {
			t.Fatalf("SubmitVerified: %v", err)
		}
	}

	drained := m.Drain()
	if len(drained) != 3 {
		t.Fatalf("Drain() returned %d items, want 3", len(drained))
	}

	if more := m.Drain(); len(more) != 0 {
		t.Fatalf("Drain() after drain returned %d items, want 0", len(more))
	}
}

func TestQueuedMempoolDefaultCapacity(t *testing.T) {
	m := NewQueuedMempool(0)
	if cap(m.queue) != 64 {
		t.Fatalf("default capacity = %d, want 64", cap(m.queue))
	}
}

func TestQueuedMempoolSubmitBlocksWhenFull(t *testing.T) {
	m := NewQueuedMempool(1)
	ctx := context.Background()

	if err := m.SubmitVerified(ctx, []byte("first")); err != nil {
		t.Fatalf("SubmitVerified: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := m.SubmitVerified(cancelCtx, []byte("second"))
	if err == nil {
		t.Fatal("expected SubmitVerified to block and time out on a full queue")
	}
}

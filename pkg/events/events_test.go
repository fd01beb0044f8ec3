// Copyright 2025 Hush Network

package events

import (
	"context"
	"testing"
)

func TestLogBusPublishDoesNotPanic(t *testing.T) {
	b := NewLogBus()
	b.Publish(context.Background(), Event{Kind: "feeds_initialized", FeedID: "feed-1", Actor: "0xabc", Block: 1})
}

func TestFirestoreBusDisabledIsNoop(t *testing.T) {
	bus, err := NewFirestoreBus(context.Background(), &FirestoreConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFirestoreBus() error = %v, want nil for a disabled bus", err)
	}
	if bus.IsEnabled() {
		t.Fatal("expected a disabled bus to report IsEnabled() == false")
	}

	// Publish must be a safe no-op even without a real Firestore client.
	bus.Publish(context.Background(), Event{Kind: "feeds_initialized", FeedID: "feed-1"})

	if err := bus.Close(); err != nil {
		t.Fatalf("Close() on a disabled bus should be a no-op, got error: %v", err)
	}
}

func TestNewFirestoreBusRequiresProjectIDWhenEnabled(t *testing.T) {
	_, err := NewFirestoreBus(context.Background(), &FirestoreConfig{Enabled: true})
	if err == nil {
		t.Fatal("expected an error when enabling firestore sync without a project ID")
	}
}

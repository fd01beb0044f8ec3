// Copyright 2025 Hush Network

package identity

import (
	"context"
	"testing"
)

func TestStaticDirectoryLookup(t *testing.T) {
	dir := NewStaticDirectory()
	dir.Set("0xabc", &Profile{PublicEncryptAddress: []byte{1, 2, 3}, Alias: "alice"})

	profile, err := dir.Lookup(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if profile.Alias != "alice" {
		t.Fatalf("Alias = %q, want alice", profile.Alias)
	}
}

func TestStaticDirectoryLookupUnknown(t *testing.T) {
	dir := NewStaticDirectory()
	_, err := dir.Lookup(context.Background(), "0xnope")
	if err != ErrProfileNotFound {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestStaticDirectoryLookupEmptyKey(t *testing.T) {
	dir := NewStaticDirectory()
	dir.Set("0xabc", &Profile{PublicEncryptAddress: nil, Alias: "no-key"})

	_, err := dir.Lookup(context.Background(), "0xabc")
	if err != ErrProfileNotFound {
		t.Fatalf("err = %v, want ErrProfileNotFound for a profile with no public key", err)
	}
}

func TestStaticDirectoryLookupCancelledContext(t *testing.T) {
	dir := NewStaticDirectory()
	dir.Set("0xabc", &Profile{PublicEncryptAddress: []byte{1}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dir.Lookup(ctx, "0xabc")
	if err == nil {
		t.Fatal("expected Lookup to fail on a cancelled context")
	}
}

func TestStaticDirectorySetOverwrites(t *testing.T) {
	dir := NewStaticDirectory()
	dir.Set("0xabc", &Profile{Alias: "first", PublicEncryptAddress: []byte{1}})
	dir.Set("0xabc", &Profile{Alias: "second", PublicEncryptAddress: []byte{1}})

	profile, err := dir.Lookup(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if profile.Alias != "second" {
		t.Fatalf("Alias = %q, want second", profile.Alias)
	}
}

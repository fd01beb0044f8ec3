// Copyright 2025 Hush Network

package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestInsertAndGetParticipant(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	feedRepo := NewFeedRepository()
	partRepo := NewParticipantRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := feedRepo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)
	defer testDB.ExecContext(ctx, "DELETE FROM feed_participants WHERE feed_id = $1", feed.FeedID)

	address := "0xalice_" + uuid.New().String()[:8]
	id, err := partRepo.InsertParticipant(ctx, testDB, &FeedParticipant{
		FeedID: feed.FeedID, Address: address, Role: RoleMember, JoinedAtBlock: 5,
	})
	if err != nil {
		t.Fatalf("InsertParticipant() error = %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero participant id")
	}

	p, err := partRepo.GetParticipant(ctx, testDB, feed.FeedID, address)
	if err != nil {
		t.Fatalf("GetParticipant() error = %v", err)
	}
	if p.Role != RoleMember || !p.IsActive() {
		t.Fatalf("GetParticipant() = %+v, want active Member", p)
	}
}

func TestParticipantNotFound(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	repo := NewParticipantRepository()
	_, err := repo.GetParticipant(context.Background(), testDB, uuid.New(), "0xghost")
	if err != ErrParticipantNotFound {
		t.Fatalf("GetParticipant() error = %v, want ErrParticipantNotFound", err)
	}
}

func TestJoinLeaveRejoinRoundTrip(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	feedRepo := NewFeedRepository()
	partRepo := NewParticipantRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := feedRepo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)
	defer testDB.ExecContext(ctx, "DELETE FROM feed_participants WHERE feed_id = $1", feed.FeedID)

	address := "0xbob_" + uuid.New().String()[:8]
	id, err := partRepo.InsertParticipant(ctx, testDB, &FeedParticipant{
		FeedID: feed.FeedID, Address: address, Role: RoleMember, JoinedAtBlock: 10,
	})
	if err != nil {
		t.Fatalf("InsertParticipant() error = %v", err)
	}

	if err := partRepo.MarkLeft(ctx, testDB, id, 20); err != nil {
		t.Fatalf("MarkLeft() error = %v", err)
	}
	if _, err := partRepo.GetActiveParticipant(ctx, testDB, feed.FeedID, address); err != ErrParticipantNotFound {
		t.Fatalf("GetActiveParticipant() after leave error = %v, want ErrParticipantNotFound", err)
	}

	if err := partRepo.RejoinParticipant(ctx, testDB, id, 120); err != nil {
		t.Fatalf("RejoinParticipant() error = %v", err)
	}

	p, err := partRepo.GetActiveParticipant(ctx, testDB, feed.FeedID, address)
	if err != nil {
		t.Fatalf("GetActiveParticipant() after rejoin error = %v", err)
	}
	if p.LeftAtBlock != nil {
		t.Fatal("expected LeftAtBlock to be cleared after rejoin")
	}
	if p.LastLeaveBlock == nil || *p.LastLeaveBlock != 20 {
		t.Fatalf("expected LastLeaveBlock to be preserved at 20, got %v", p.LastLeaveBlock)
	}
}

func TestCountActiveAdmins(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	feedRepo := NewFeedRepository()
	partRepo := NewParticipantRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := feedRepo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)
	defer testDB.ExecContext(ctx, "DELETE FROM feed_participants WHERE feed_id = $1", feed.FeedID)

	for i, role := range []ParticipantRole{RoleAdmin, RoleAdmin, RoleMember} {
		if _, err := partRepo.InsertParticipant(ctx, testDB, &FeedParticipant{
			FeedID: feed.FeedID, Address: "0xp" + string(rune('a'+i)), Role: role, JoinedAtBlock: 1,
		}); err != nil {
			t.Fatalf("InsertParticipant() error = %v", err)
		}
	}

	count, err := partRepo.CountActiveAdmins(ctx, testDB, feed.FeedID)
	if err != nil {
		t.Fatalf("CountActiveAdmins() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("CountActiveAdmins() = %d, want 2", count)
	}
}

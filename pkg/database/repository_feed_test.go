// Copyright 2025 Hush Network

package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func newTestFeed(feedType FeedType) *Feed {
	return &Feed{
		FeedID:               uuid.New(),
		Title:                "test feed",
		Type:                 feedType,
		CreatedAtBlock:       1,
		LastUpdatedAtBlock:   1,
		CurrentKeyGeneration: 0,
	}
}

func TestCreateAndGetFeed(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	repo := NewFeedRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := repo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)

	got, err := repo.GetFeed(ctx, testDB, feed.FeedID)
	if err != nil {
		t.Fatalf("GetFeed() error = %v", err)
	}
	if got.Title != feed.Title || got.Type != feed.Type {
		t.Fatalf("GetFeed() = %+v, want title/type matching %+v", got, feed)
	}
}

func TestGetFeedNotFound(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	repo := NewFeedRepository()
	_, err := repo.GetFeed(context.Background(), testDB, uuid.New())
	if err != ErrFeedNotFound {
		t.Fatalf("GetFeed() error = %v, want ErrFeedNotFound", err)
	}
}

func TestFindPersonalFeedByOwner(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	feedRepo := NewFeedRepository()
	partRepo := NewParticipantRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypePersonal)
	owner := "0xowner_" + uuid.New().String()[:8]

	if err := feedRepo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)

	if _, err := partRepo.InsertParticipant(ctx, testDB, &FeedParticipant{
		FeedID: feed.FeedID, Address: owner, Role: RoleOwner, JoinedAtBlock: 1,
	}); err != nil {
		t.Fatalf("InsertParticipant() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feed_participants WHERE feed_id = $1", feed.FeedID)

	found, err := feedRepo.FindPersonalFeedByOwner(ctx, testDB, owner)
	if err != nil {
		t.Fatalf("FindPersonalFeedByOwner() error = %v", err)
	}
	if found.FeedID != feed.FeedID {
		t.Fatalf("FindPersonalFeedByOwner() = %v, want %v", found.FeedID, feed.FeedID)
	}

	if _, err := feedRepo.FindPersonalFeedByOwner(ctx, testDB, "0xno-such-owner"); err != ErrFeedNotFound {
		t.Fatalf("FindPersonalFeedByOwner() error = %v, want ErrFeedNotFound", err)
	}
}

func TestUpdateGroupTitleDescription(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	repo := NewFeedRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := repo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)

	newTitle := "renamed"
	if err := repo.UpdateGroupTitleDescription(ctx, testDB, feed.FeedID, &newTitle, nil); err != nil {
		t.Fatalf("UpdateGroupTitleDescription() error = %v", err)
	}

	got, _ := repo.GetFeed(ctx, testDB, feed.FeedID)
	if got.Title != newTitle {
		t.Fatalf("Title = %q, want %q", got.Title, newTitle)
	}
}

func TestSoftDeleteGroup(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	repo := NewFeedRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := repo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)

	if err := repo.SoftDeleteGroup(ctx, testDB, feed.FeedID); err != nil {
		t.Fatalf("SoftDeleteGroup() error = %v", err)
	}

	got, _ := repo.GetFeed(ctx, testDB, feed.FeedID)
	if !got.IsDeleted {
		t.Fatal("expected IsDeleted to be true after SoftDeleteGroup")
	}
}

func TestSetCurrentKeyGeneration(t *testing.T) {
	if testDB == nil {
		t.Skip("test database not configured")
	}
	repo := NewFeedRepository()
	ctx := context.Background()

	feed := newTestFeed(FeedTypeGroup)
	if err := repo.CreateFeed(ctx, testDB, feed); err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	defer testDB.ExecContext(ctx, "DELETE FROM feeds WHERE feed_id = $1", feed.FeedID)

	if err := repo.SetCurrentKeyGeneration(ctx, testDB, feed.FeedID, 2); err != nil {
		t.Fatalf("SetCurrentKeyGeneration() error = %v", err)
	}

	got, _ := repo.GetFeed(ctx, testDB, feed.FeedID)
	if got.CurrentKeyGeneration != 2 {
		t.Fatalf("CurrentKeyGeneration = %d, want 2", got.CurrentKeyGeneration)
	}
}

// Copyright 2025 Hush Network
//
// Feed Repository - CRUD operations for personal, chat and group feeds.
// Every method takes an explicit Queryer so callers can run it standalone
// against the pool or inside a caller-managed transaction.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// FeedRepository handles feed-row persistence, independent of type.
type FeedRepository struct{}

// NewFeedRepository creates a new feed repository.
func NewFeedRepository() *FeedRepository {
	return &FeedRepository{}
}

// CreateFeed inserts a new feed row. Callers that need conditional-insert
// semantics (NewPersonalFeed) should guard with FindPersonalFeedByOwner first.
func (r *FeedRepository) CreateFeed(ctx context.Context, db Queryer, feed *Feed) error {
	query := `
		INSERT INTO feeds (
			feed_id, title, feed_type, created_at_block, last_updated_at_block,
			is_public, description, is_deleted, current_key_generation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.ExecContext(ctx, query,
		feed.FeedID, feed.Title, feed.Type, feed.CreatedAtBlock, feed.LastUpdatedAtBlock,
		feed.IsPublic, feed.Description, feed.IsDeleted, feed.CurrentKeyGeneration,
	)
	if err != nil {
		return fmt.Errorf("failed to create feed: %w", err)
	}
	return nil
}

// GetFeed retrieves a feed by id.
func (r *FeedRepository) GetFeed(ctx context.Context, db Queryer, feedID uuid.UUID) (*Feed, error) {
	query := `
		SELECT feed_id, title, feed_type, created_at_block, last_updated_at_block,
			is_public, description, is_deleted, current_key_generation
		FROM feeds WHERE feed_id = $1`

	feed := &Feed{}
	err := db.QueryRowContext(ctx, query, feedID).Scan(
		&feed.FeedID, &feed.Title, &feed.Type, &feed.CreatedAtBlock, &feed.LastUpdatedAtBlock,
		&feed.IsPublic, &feed.Description, &feed.IsDeleted, &feed.CurrentKeyGeneration,
	)
	if err == sql.ErrNoRows {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

// FindPersonalFeedByOwner returns the personal feed owned by address, if any.
func (r *FeedRepository) FindPersonalFeedByOwner(ctx context.Context, db Queryer, address string) (*Feed, error) {
	query := `
		SELECT f.feed_id, f.title, f.feed_type, f.created_at_block, f.last_updated_at_block,
			f.is_public, f.description, f.is_deleted, f.current_key_generation
		FROM feeds f
		JOIN feed_participants p ON p.feed_id = f.feed_id
		WHERE f.feed_type = 'personal' AND p.participant_address = $1
		LIMIT 1`

	feed := &Feed{}
	err := db.QueryRowContext(ctx, query, address).Scan(
		&feed.FeedID, &feed.Title, &feed.Type, &feed.CreatedAtBlock, &feed.LastUpdatedAtBlock,
		&feed.IsPublic, &feed.Description, &feed.IsDeleted, &feed.CurrentKeyGeneration,
	)
	if err == sql.ErrNoRows {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find personal feed: %w", err)
	}
	return feed, nil
}

// ListFeedsForUser returns every feed the given address currently
// participates in (active seat only).
func (r *FeedRepository) ListFeedsForUser(ctx context.Context, db Queryer, address string) ([]*Feed, error) {
	query := `
		SELECT DISTINCT f.feed_id, f.title, f.feed_type, f.created_at_block, f.last_updated_at_block,
			f.is_public, f.description, f.is_deleted, f.current_key_generation
		FROM feeds f
		JOIN feed_participants p ON p.feed_id = f.feed_id
		WHERE p.participant_address = $1 AND p.left_at_block IS NULL`

	rows, err := db.QueryContext(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds for user: %w", err)
	}
	defer rows.Close()

	var feeds []*Feed
	for rows.Next() {
		feed := &Feed{}
		if err := rows.Scan(
			&feed.FeedID, &feed.Title, &feed.Type, &feed.CreatedAtBlock, &feed.LastUpdatedAtBlock,
			&feed.IsPublic, &feed.Description, &feed.IsDeleted, &feed.CurrentKeyGeneration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

// UpdateLastUpdatedAtBlock bumps the feed's last-activity block index.
func (r *FeedRepository) UpdateLastUpdatedAtBlock(ctx context.Context, db Queryer, feedID uuid.UUID, block uint64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE feeds SET last_updated_at_block = $2 WHERE feed_id = $1`, feedID, block)
	if err != nil {
		return fmt.Errorf("failed to update feed last_updated_at_block: %w", err)
	}
	return nil
}

// UpdateGroupTitleDescription mutates a group feed's title/description.
func (r *FeedRepository) UpdateGroupTitleDescription(ctx context.Context, db Queryer, feedID uuid.UUID, title, description *string) error {
	if title != nil {
		if _, err := db.ExecContext(ctx,
			`UPDATE feeds SET title = $2 WHERE feed_id = $1`, feedID, *title); err != nil {
			return fmt.Errorf("failed to update group title: %w", err)
		}
	}
	if description != nil {
		if _, err := db.ExecContext(ctx,
			`UPDATE feeds SET description = $2 WHERE feed_id = $1`, feedID, *description); err != nil {
			return fmt.Errorf("failed to update group description: %w", err)
		}
	}
	return nil
}

// SoftDeleteGroup marks a group feed as deleted without removing history.
func (r *FeedRepository) SoftDeleteGroup(ctx context.Context, db Queryer, feedID uuid.UUID) error {
	_, err := db.ExecContext(ctx,
		`UPDATE feeds SET is_deleted = true WHERE feed_id = $1`, feedID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete group: %w", err)
	}
	return nil
}

// SetCurrentKeyGeneration updates the group's current-generation pointer.
// Callers invoke this inside the same transaction as the KeyGeneration insert.
func (r *FeedRepository) SetCurrentKeyGeneration(ctx context.Context, db Queryer, feedID uuid.UUID, generation int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE feeds SET current_key_generation = $2 WHERE feed_id = $1`, feedID, generation)
	if err != nil {
		return fmt.Errorf("failed to set current key generation: %w", err)
	}
	return nil
}

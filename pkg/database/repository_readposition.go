// Copyright 2025 Hush Network
//
// Read Position Repository - per-user read watermarks, max-wins on update.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ReadPositionRepository handles feed_read_positions rows.
type ReadPositionRepository struct{}

// NewReadPositionRepository creates a new read-position repository.
func NewReadPositionRepository() *ReadPositionRepository {
	return &ReadPositionRepository{}
}

// GetReadPosition returns the caller's last-read watermark for a feed.
func (r *ReadPositionRepository) GetReadPosition(ctx context.Context, db Queryer, userAddress string, feedID uuid.UUID) (*ReadPosition, error) {
	rp := &ReadPosition{}
	err := db.QueryRowContext(ctx,
		`SELECT user_address, feed_id, last_read_block
		 FROM feed_read_positions WHERE user_address = $1 AND feed_id = $2`,
		userAddress, feedID,
	).Scan(&rp.UserAddress, &rp.FeedID, &rp.LastReadBlock)
	if err == sql.ErrNoRows {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get read position: %w", err)
	}
	return rp, nil
}

// UpsertMaxReadPosition inserts or advances a user's read watermark for a
// feed, never regressing it (spec.md §4.6 max-wins semantics).
func (r *ReadPositionRepository) UpsertMaxReadPosition(ctx context.Context, db Queryer, userAddress string, feedID uuid.UUID, block uint64) error {
	query := `
		INSERT INTO feed_read_positions (user_address, feed_id, last_read_block)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_address, feed_id)
		DO UPDATE SET last_read_block = GREATEST(feed_read_positions.last_read_block, EXCLUDED.last_read_block)`

	_, err := db.ExecContext(ctx, query, userAddress, feedID, block)
	if err != nil {
		return fmt.Errorf("failed to upsert read position: %w", err)
	}
	return nil
}

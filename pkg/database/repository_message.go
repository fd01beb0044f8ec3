// Copyright 2025 Hush Network
//
// Message Repository - append-only storage for feed messages.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// MessageRepository handles feed_messages rows.
type MessageRepository struct{}

// NewMessageRepository creates a new message repository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

// InsertMessage appends a ciphertext message to a feed.
func (r *MessageRepository) InsertMessage(ctx context.Context, db Queryer, m *FeedMessage) error {
	query := `
		INSERT INTO feed_messages (
			message_id, feed_id, ciphertext, issuer_address, timestamp,
			block_index, reply_to, author_commitment, key_generation
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := db.ExecContext(ctx, query,
		m.MessageID, m.FeedID, m.Ciphertext, m.IssuerAddress, m.Timestamp,
		m.BlockIndex, m.ReplyTo, m.AuthorCommitment, m.KeyGeneration,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessage retrieves a single message by id.
func (r *MessageRepository) GetMessage(ctx context.Context, db Queryer, messageID uuid.UUID) (*FeedMessage, error) {
	query := `
		SELECT message_id, feed_id, ciphertext, issuer_address, timestamp,
			block_index, reply_to, author_commitment, key_generation
		FROM feed_messages WHERE message_id = $1`

	m := &FeedMessage{}
	err := db.QueryRowContext(ctx, query, messageID).Scan(
		&m.MessageID, &m.FeedID, &m.Ciphertext, &m.IssuerAddress, &m.Timestamp,
		&m.BlockIndex, &m.ReplyTo, &m.AuthorCommitment, &m.KeyGeneration,
	)
	if err == sql.ErrNoRows {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return m, nil
}

// ListRecentMessages returns up to limit messages for a feed, most recent first.
func (r *MessageRepository) ListRecentMessages(ctx context.Context, db Queryer, feedID uuid.UUID, limit int) ([]*FeedMessage, error) {
	query := `
		SELECT message_id, feed_id, ciphertext, issuer_address, timestamp,
			block_index, reply_to, author_commitment, key_generation
		FROM feed_messages
		WHERE feed_id = $1
		ORDER BY block_index DESC, timestamp DESC
		LIMIT $2`

	rows, err := db.QueryContext(ctx, query, feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent messages: %w", err)
	}
	defer rows.Close()

	var out []*FeedMessage
	for rows.Next() {
		m := &FeedMessage{}
		if err := rows.Scan(
			&m.MessageID, &m.FeedID, &m.Ciphertext, &m.IssuerAddress, &m.Timestamp,
			&m.BlockIndex, &m.ReplyTo, &m.AuthorCommitment, &m.KeyGeneration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListMessagesSinceBlock returns every message for a feed with block_index
// strictly greater than afterBlock, oldest first, capped at limit.
func (r *MessageRepository) ListMessagesSinceBlock(ctx context.Context, db Queryer, feedID uuid.UUID, afterBlock uint64, limit int) ([]*FeedMessage, error) {
	query := `
		SELECT message_id, feed_id, ciphertext, issuer_address, timestamp,
			block_index, reply_to, author_commitment, key_generation
		FROM feed_messages
		WHERE feed_id = $1 AND block_index > $2
		ORDER BY block_index ASC, timestamp ASC
		LIMIT $3`

	rows, err := db.QueryContext(ctx, query, feedID, afterBlock, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages since block: %w", err)
	}
	defer rows.Close()

	var out []*FeedMessage
	for rows.Next() {
		m := &FeedMessage{}
		if err := rows.Scan(
			&m.MessageID, &m.FeedID, &m.Ciphertext, &m.IssuerAddress, &m.Timestamp,
			&m.BlockIndex, &m.ReplyTo, &m.AuthorCommitment, &m.KeyGeneration,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

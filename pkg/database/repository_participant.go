// Copyright 2025 Hush Network
//
// Participant Repository - CRUD operations for feed/group participants.

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// ParticipantRepository handles feed-participant rows.
type ParticipantRepository struct{}

// NewParticipantRepository creates a new participant repository.
func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{}
}

// InsertParticipant inserts a new participant row.
func (r *ParticipantRepository) InsertParticipant(ctx context.Context, db Queryer, p *FeedParticipant) (int64, error) {
	query := `
		INSERT INTO feed_participants (
			feed_id, participant_address, role, encrypted_feed_key,
			joined_at_block, left_at_block, last_leave_block
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id int64
	err := db.QueryRowContext(ctx, query,
		p.FeedID, p.Address, p.Role, p.EncryptedFeedKey,
		p.JoinedAtBlock, p.LeftAtBlock, p.LastLeaveBlock,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert participant: %w", err)
	}
	return id, nil
}

// GetParticipant returns a participant row by feed+address, including left
// (inactive) rows, picking the most recently created one.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, db Queryer, feedID uuid.UUID, address string) (*FeedParticipant, error) {
	query := `
		SELECT id, feed_id, participant_address, role, encrypted_feed_key,
			joined_at_block, left_at_block, last_leave_block
		FROM feed_participants
		WHERE feed_id = $1 AND participant_address = $2
		ORDER BY id DESC
		LIMIT 1`

	p := &FeedParticipant{}
	err := db.QueryRowContext(ctx, query, feedID, address).Scan(
		&p.ID, &p.FeedID, &p.Address, &p.Role, &p.EncryptedFeedKey,
		&p.JoinedAtBlock, &p.LeftAtBlock, &p.LastLeaveBlock,
	)
	if err == sql.ErrNoRows {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// GetActiveParticipant returns the currently active (not-left) participant
// row for feed+address, if any.
func (r *ParticipantRepository) GetActiveParticipant(ctx context.Context, db Queryer, feedID uuid.UUID, address string) (*FeedParticipant, error) {
	query := `
		SELECT id, feed_id, participant_address, role, encrypted_feed_key,
			joined_at_block, left_at_block, last_leave_block
		FROM feed_participants
		WHERE feed_id = $1 AND participant_address = $2 AND left_at_block IS NULL`

	p := &FeedParticipant{}
	err := db.QueryRowContext(ctx, query, feedID, address).Scan(
		&p.ID, &p.FeedID, &p.Address, &p.Role, &p.EncryptedFeedKey,
		&p.JoinedAtBlock, &p.LeftAtBlock, &p.LastLeaveBlock,
	)
	if err == sql.ErrNoRows {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active participant: %w", err)
	}
	return p, nil
}

// ListActiveParticipants returns every active participant of a feed.
func (r *ParticipantRepository) ListActiveParticipants(ctx context.Context, db Queryer, feedID uuid.UUID) ([]*FeedParticipant, error) {
	query := `
		SELECT id, feed_id, participant_address, role, encrypted_feed_key,
			joined_at_block, left_at_block, last_leave_block
		FROM feed_participants
		WHERE feed_id = $1 AND left_at_block IS NULL
		ORDER BY joined_at_block ASC`

	rows, err := db.QueryContext(ctx, query, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active participants: %w", err)
	}
	defer rows.Close()

	var out []*FeedParticipant
	for rows.Next() {
		p := &FeedParticipant{}
		if err := rows.Scan(
			&p.ID, &p.FeedID, &p.Address, &p.Role, &p.EncryptedFeedKey,
			&p.JoinedAtBlock, &p.LeftAtBlock, &p.LastLeaveBlock,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountActiveAdmins counts active participants with role Admin in a group.
func (r *ParticipantRepository) CountActiveAdmins(ctx context.Context, db Queryer, feedID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feed_participants WHERE feed_id = $1 AND left_at_block IS NULL AND role = $2`,
		feedID, RoleAdmin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active admins: %w", err)
	}
	return count, nil
}

// SetRole updates an active participant's role.
func (r *ParticipantRepository) SetRole(ctx context.Context, db Queryer, id int64, role ParticipantRole) error {
	_, err := db.ExecContext(ctx,
		`UPDATE feed_participants SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("failed to set participant role: %w", err)
	}
	return nil
}

// RejoinParticipant resets a previously-left row back to an active Member
// seat, preserving last_leave_block (spec.md §4.4 JoinGroupFeed).
func (r *ParticipantRepository) RejoinParticipant(ctx context.Context, db Queryer, id int64, joinedAtBlock uint64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE feed_participants
		 SET left_at_block = NULL, role = $2, joined_at_block = $3
		 WHERE id = $1`,
		id, RoleMember, joinedAtBlock,
	)
	if err != nil {
		return fmt.Errorf("failed to rejoin participant: %w", err)
	}
	return nil
}

// MarkLeft sets left_at_block and last_leave_block for an active participant.
func (r *ParticipantRepository) MarkLeft(ctx context.Context, db Queryer, id int64, leftAtBlock uint64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE feed_participants SET left_at_block = $2, last_leave_block = $2 WHERE id = $1`,
		id, leftAtBlock,
	)
	if err != nil {
		return fmt.Errorf("failed to mark participant left: %w", err)
	}
	return nil
}

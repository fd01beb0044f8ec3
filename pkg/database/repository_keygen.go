// Copyright 2025 Hush Network
//
// Key Generation Repository - CRUD operations for group encryption epochs
// and their per-member encrypted key rows (spec.md §3 KeyGeneration,
// EncryptedMemberKey).

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// KeyGenerationRepository handles KeyGeneration and EncryptedMemberKey rows.
type KeyGenerationRepository struct{}

// NewKeyGenerationRepository creates a new key generation repository.
func NewKeyGenerationRepository() *KeyGenerationRepository {
	return &KeyGenerationRepository{}
}

// GetMaxGeneration returns the highest generation number for a group, or
// ErrKeyGenerationNotFound if the group has no key generations yet.
func (r *KeyGenerationRepository) GetMaxGeneration(ctx context.Context, db Queryer, feedID uuid.UUID) (int64, error) {
	var gen sql.NullInt64
	err := db.QueryRowContext(ctx,
		`SELECT MAX(generation) FROM key_generations WHERE feed_id = $1`, feedID,
	).Scan(&gen)
	if err != nil {
		return 0, fmt.Errorf("failed to get max key generation: %w", err)
	}
	if !gen.Valid {
		return 0, ErrKeyGenerationNotFound
	}
	return gen.Int64, nil
}

// InsertKeyGeneration inserts a new KeyGeneration row, closing out the
// previous open generation (valid_to_block = NULL) with validFromBlock.
func (r *KeyGenerationRepository) InsertKeyGeneration(ctx context.Context, db Queryer, kg *KeyGeneration) (int64, error) {
	_, err := db.ExecContext(ctx,
		`UPDATE key_generations SET valid_to_block = $2 WHERE feed_id = $1 AND valid_to_block IS NULL`,
		kg.FeedID, kg.ValidFromBlock,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to close previous key generation: %w", err)
	}

	var id int64
	err = db.QueryRowContext(ctx,
		`INSERT INTO key_generations (feed_id, generation, valid_from_block, valid_to_block, rotation_trigger)
		 VALUES ($1, $2, $3, NULL, $4) RETURNING id`,
		kg.FeedID, kg.Generation, kg.ValidFromBlock, kg.Trigger,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert key generation: %w", err)
	}
	return id, nil
}

// GetKeyGeneration returns a single generation of a group's key history.
func (r *KeyGenerationRepository) GetKeyGeneration(ctx context.Context, db Queryer, feedID uuid.UUID, generation int64) (*KeyGeneration, error) {
	kg := &KeyGeneration{}
	err := db.QueryRowContext(ctx,
		`SELECT id, feed_id, generation, valid_from_block, valid_to_block, rotation_trigger
		 FROM key_generations WHERE feed_id = $1 AND generation = $2`,
		feedID, generation,
	).Scan(&kg.ID, &kg.FeedID, &kg.Generation, &kg.ValidFromBlock, &kg.ValidToBlock, &kg.Trigger)
	if err == sql.ErrNoRows {
		return nil, ErrKeyGenerationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key generation: %w", err)
	}
	return kg, nil
}

// ListKeyGenerations returns every generation recorded for a group, ordered
// oldest first.
func (r *KeyGenerationRepository) ListKeyGenerations(ctx context.Context, db Queryer, feedID uuid.UUID) ([]*KeyGeneration, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, feed_id, generation, valid_from_block, valid_to_block, rotation_trigger
		 FROM key_generations WHERE feed_id = $1 ORDER BY generation ASC`,
		feedID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list key generations: %w", err)
	}
	defer rows.Close()

	var out []*KeyGeneration
	for rows.Next() {
		kg := &KeyGeneration{}
		if err := rows.Scan(&kg.ID, &kg.FeedID, &kg.Generation, &kg.ValidFromBlock, &kg.ValidToBlock, &kg.Trigger); err != nil {
			return nil, fmt.Errorf("failed to scan key generation: %w", err)
		}
		out = append(out, kg)
	}
	return out, rows.Err()
}

// InsertEncryptedMemberKey inserts one per-member wrapped key row.
func (r *KeyGenerationRepository) InsertEncryptedMemberKey(ctx context.Context, db Queryer, k *EncryptedMemberKey) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO encrypted_member_keys (key_generation_id, member_address, encrypted_aes_key)
		 VALUES ($1, $2, $3)`,
		k.KeyGenerationID, k.MemberAddress, k.EncryptedAESKey,
	)
	if err != nil {
		return fmt.Errorf("failed to insert encrypted member key: %w", err)
	}
	return nil
}

// ListEncryptedMemberKeys returns every wrapped key row for a generation.
func (r *KeyGenerationRepository) ListEncryptedMemberKeys(ctx context.Context, db Queryer, keyGenerationID int64) ([]*EncryptedMemberKey, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, key_generation_id, member_address, encrypted_aes_key
		 FROM encrypted_member_keys WHERE key_generation_id = $1`,
		keyGenerationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list encrypted member keys: %w", err)
	}
	defer rows.Close()

	var out []*EncryptedMemberKey
	for rows.Next() {
		k := &EncryptedMemberKey{}
		if err := rows.Scan(&k.ID, &k.KeyGenerationID, &k.MemberAddress, &k.EncryptedAESKey); err != nil {
			return nil, fmt.Errorf("failed to scan encrypted member key: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

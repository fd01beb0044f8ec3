// Copyright 2025 Hush Network
//
// Package feeds is the authoritative persistence layer for feeds,
// participants, group metadata, messages and key generations (spec.md
// §4.1 "Feeds Store", component C). Every exported mutator preserves the
// GroupFeed invariants from spec.md §3 by construction: it either
// completes its full effect inside one transaction or leaves the store
// untouched.

package feeds

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// Store bundles the repositories the handlers and rotation engine operate
// through. It holds no connection state of its own — every method takes
// either the pooled client or a transaction as its Queryer.
type Store struct {
	db           *database.Client
	feeds        *database.FeedRepository
	participants *database.ParticipantRepository
	keygens      *database.KeyGenerationRepository
	messages     *database.MessageRepository
	readPos      *database.ReadPositionRepository
}

// NewStore wires a Store on top of a database client.
func NewStore(db *database.Client) *Store {
	return &Store{
		db:           db,
		feeds:        database.NewFeedRepository(),
		participants: database.NewParticipantRepository(),
		keygens:      database.NewKeyGenerationRepository(),
		messages:     database.NewMessageRepository(),
		readPos:      database.NewReadPositionRepository(),
	}
}

// Feeds exposes the feed repository for read-only callers (validators,
// cache repopulation).
func (s *Store) Feeds() *database.FeedRepository { return s.feeds }

// Participants exposes the participant repository for read-only callers.
func (s *Store) Participants() *database.ParticipantRepository { return s.participants }

// KeyGenerations exposes the key-generation repository for read-only callers.
func (s *Store) KeyGenerations() *database.KeyGenerationRepository { return s.keygens }

// Messages exposes the message repository for read-only callers.
func (s *Store) Messages() *database.MessageRepository { return s.messages }

// ReadPositions exposes the read-position repository for read-only callers.
func (s *Store) ReadPositions() *database.ReadPositionRepository { return s.readPos }

// DB returns the underlying client so handlers can open their own
// transactions spanning multiple store operations (e.g. Join's rotation +
// participant update).
func (s *Store) DB() *database.Client { return s.db }

// WithTx runs fn inside a single database transaction, committing on
// success and rolling back on error or panic, satisfying spec.md §5
// "each handler's authoritative writes execute in a single store
// transaction".
func (s *Store) WithTx(ctx context.Context, fn func(tx *database.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// EntitledMembers returns every address currently entitled to the group's
// symmetric key: participants with role in {Admin, Member, Blocked}.
// Banned members are excluded (spec.md §4.3 step 2).
func (s *Store) EntitledMembers(ctx context.Context, db database.Queryer, feedID uuid.UUID) ([]string, error) {
	active, err := s.participants.ListActiveParticipants(ctx, db, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active participants: %w", err)
	}
	out := make([]string, 0, len(active))
	for _, p := range active {
		if p.Role == database.RoleAdmin || p.Role == database.RoleMember || p.Role == database.RoleBlocked {
			out = append(out, p.Address)
		}
	}
	return out, nil
}

// Copyright 2025 Hush Network

package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// CreatePersonalFeedIfAbsent implements NewPersonalFeed's conditional-insert
// semantics (spec.md §4.4): if the creator already owns a personal feed,
// this is a no-op and the existing feed is returned with created=false.
func (s *Store) CreatePersonalFeedIfAbsent(ctx context.Context, db database.Queryer, feedID uuid.UUID, owner string, wrappedKey []byte, currentBlock uint64) (feed *database.Feed, created bool, err error) {
	existing, err := s.feeds.FindPersonalFeedByOwner(ctx, db, owner)
	if err == nil {
		return existing, false, nil
	}
	if err != database.ErrFeedNotFound {
		return nil, false, fmt.Errorf("failed to check for existing personal feed: %w", err)
	}

	feed = &database.Feed{
		FeedID:             feedID,
		Title:              "",
		Type:               database.FeedTypePersonal,
		CreatedAtBlock:     currentBlock,
		LastUpdatedAtBlock: currentBlock,
	}
	if err := s.feeds.CreateFeed(ctx, db, feed); err != nil {
		return nil, false, fmt.Errorf("failed to create personal feed: %w", err)
	}

	if _, err := s.participants.InsertParticipant(ctx, db, &database.FeedParticipant{
		FeedID:           feedID,
		Address:          owner,
		Role:             database.RoleOwner,
		EncryptedFeedKey: wrappedKey,
		JoinedAtBlock:    currentBlock,
	}); err != nil {
		return nil, false, fmt.Errorf("failed to insert personal feed owner: %w", err)
	}

	return feed, true, nil
}

// CreateChatFeed creates a 2-party feed with both participants as Owner
// (spec.md §4.4 "NewChatFeed").
func (s *Store) CreateChatFeed(ctx context.Context, db database.Queryer, feedID uuid.UUID, participants [2]string, wrappedKeys [2][]byte, currentBlock uint64) (*database.Feed, error) {
	feed := &database.Feed{
		FeedID:             feedID,
		Title:              "",
		Type:               database.FeedTypeChat,
		CreatedAtBlock:     currentBlock,
		LastUpdatedAtBlock: currentBlock,
	}
	if err := s.feeds.CreateFeed(ctx, db, feed); err != nil {
		return nil, fmt.Errorf("failed to create chat feed: %w", err)
	}
	for i, addr := range participants {
		if _, err := s.participants.InsertParticipant(ctx, db, &database.FeedParticipant{
			FeedID:           feedID,
			Address:          addr,
			Role:             database.RoleOwner,
			EncryptedFeedKey: wrappedKeys[i],
			JoinedAtBlock:    currentBlock,
		}); err != nil {
			return nil, fmt.Errorf("failed to insert chat participant %s: %w", addr, err)
		}
	}
	return feed, nil
}

// InitialMember is one participant named at group creation time.
type InitialMember struct {
	Address         string
	EncryptedAESKey []byte
}

// CreateGroupFeed creates a group feed with generation 0 and one
// EncryptedMemberKey per initial participant (spec.md §4.4 "NewGroupFeed").
// The creator becomes Admin; every other initial member becomes Member.
func (s *Store) CreateGroupFeed(ctx context.Context, db database.Queryer, feedID uuid.UUID, title, description string, isPublic bool, creator string, members []InitialMember, currentBlock uint64) (*database.Feed, error) {
	feed := &database.Feed{
		FeedID:               feedID,
		Title:                title,
		Type:                 database.FeedTypeGroup,
		CreatedAtBlock:       currentBlock,
		LastUpdatedAtBlock:   currentBlock,
		IsPublic:             isPublic,
		Description:          description,
		IsDeleted:            false,
		CurrentKeyGeneration: 0,
	}
	if err := s.feeds.CreateFeed(ctx, db, feed); err != nil {
		return nil, fmt.Errorf("failed to create group feed: %w", err)
	}

	for _, m := range members {
		role := database.RoleMember
		if m.Address == creator {
			role = database.RoleAdmin
		}
		if _, err := s.participants.InsertParticipant(ctx, db, &database.FeedParticipant{
			FeedID:        feedID,
			Address:       m.Address,
			Role:          role,
			JoinedAtBlock: currentBlock,
		}); err != nil {
			return nil, fmt.Errorf("failed to insert group participant %s: %w", m.Address, err)
		}
	}

	keyGenID, err := s.keygens.InsertKeyGeneration(ctx, db, &database.KeyGeneration{
		FeedID:         feedID,
		Generation:     0,
		ValidFromBlock: currentBlock,
		Trigger:        database.TriggerJoin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert initial key generation: %w", err)
	}
	for _, m := range members {
		if err := s.keygens.InsertEncryptedMemberKey(ctx, db, &database.EncryptedMemberKey{
			KeyGenerationID: keyGenID,
			MemberAddress:   m.Address,
			EncryptedAESKey: m.EncryptedAESKey,
		}); err != nil {
			return nil, fmt.Errorf("failed to insert initial member key for %s: %w", m.Address, err)
		}
	}

	return feed, nil
}

// AddOrRejoinParticipant implements Join/AddMember's membership-write
// semantics (spec.md §4.4): update an existing left row in place,
// preserving last_leave_block, or insert a fresh Member row.
func (s *Store) AddOrRejoinParticipant(ctx context.Context, db database.Queryer, feedID uuid.UUID, address string, currentBlock uint64) error {
	existing, err := s.participants.GetParticipant(ctx, db, feedID, address)
	if err == database.ErrParticipantNotFound {
		_, err := s.participants.InsertParticipant(ctx, db, &database.FeedParticipant{
			FeedID:        feedID,
			Address:       address,
			Role:          database.RoleMember,
			JoinedAtBlock: currentBlock,
		})
		if err != nil {
			return fmt.Errorf("failed to insert new participant: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up participant: %w", err)
	}

	if err := s.participants.RejoinParticipant(ctx, db, existing.ID, currentBlock); err != nil {
		return fmt.Errorf("failed to rejoin participant: %w", err)
	}
	return nil
}

// RemoveParticipant marks an active participant as having left
// (spec.md §4.4 "LeaveGroupFeed").
func (s *Store) RemoveParticipant(ctx context.Context, db database.Queryer, feedID uuid.UUID, address string, currentBlock uint64) error {
	p, err := s.participants.GetActiveParticipant(ctx, db, feedID, address)
	if err != nil {
		return fmt.Errorf("failed to look up active participant: %w", err)
	}
	if err := s.participants.MarkLeft(ctx, db, p.ID, currentBlock); err != nil {
		return fmt.Errorf("failed to mark participant left: %w", err)
	}
	return nil
}

// SetParticipantRole changes an active participant's role in place
// (Ban, Block, Unblock and Promote use this; Unban goes through
// AddOrRejoinParticipant instead).
func (s *Store) SetParticipantRole(ctx context.Context, db database.Queryer, feedID uuid.UUID, address string, role database.ParticipantRole) error {
	p, err := s.participants.GetActiveParticipant(ctx, db, feedID, address)
	if err != nil {
		return fmt.Errorf("failed to look up active participant: %w", err)
	}
	if err := s.participants.SetRole(ctx, db, p.ID, role); err != nil {
		return fmt.Errorf("failed to set participant role: %w", err)
	}
	return nil
}

// SoftDeleteGroup marks a group deleted without removing any rows
// (spec.md §4.4 "DeleteGroupFeed" and the LeaveGroupFeed last-admin path).
func (s *Store) SoftDeleteGroup(ctx context.Context, db database.Queryer, feedID uuid.UUID) error {
	return s.feeds.SoftDeleteGroup(ctx, db, feedID)
}

// UpdateGroupTitle mutates a group's title.
func (s *Store) UpdateGroupTitle(ctx context.Context, db database.Queryer, feedID uuid.UUID, title string) error {
	return s.feeds.UpdateGroupTitleDescription(ctx, db, feedID, &title, nil)
}

// UpdateGroupDescription mutates a group's description.
func (s *Store) UpdateGroupDescription(ctx context.Context, db database.Queryer, feedID uuid.UUID, description string) error {
	return s.feeds.UpdateGroupTitleDescription(ctx, db, feedID, nil, &description)
}

// AppendMessage inserts a message and bumps the feed's last-activity
// block, the two store-side effects common to NewFeedMessage and
// NewGroupFeedMessage (spec.md §4.4).
func (s *Store) AppendMessage(ctx context.Context, db database.Queryer, msg *database.FeedMessage, currentBlock uint64) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if err := s.messages.InsertMessage(ctx, db, msg); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	if err := s.feeds.UpdateLastUpdatedAtBlock(ctx, db, msg.FeedID, currentBlock); err != nil {
		return fmt.Errorf("failed to bump feed activity block: %w", err)
	}
	return nil
}

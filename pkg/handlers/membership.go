// Copyright 2025 Hush Network

package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// HandleJoinGroupFeed admits the signatory to a group, rotating the
// group's symmetric key to include them in the same transaction
// (spec.md §4.4 "JoinGroupFeed"). Cache updates and the "user joined"
// event follow the store commit in the exact order the section
// prescribes: key-generation cache, participants cache, feed activity
// bump, feed-list cache, event.
func HandleJoinGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.JoinGroupFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	var rotation *rotationResult
	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		base, err := env.Store.EntitledMembers(ctx, dtx, feedID)
		if err != nil {
			return err
		}
		if err := env.Store.AddOrRejoinParticipant(ctx, dtx, feedID, p.SubjectAddress, currentBlock); err != nil {
			return err
		}
		payload, err := env.Rotator.Rotate(ctx, dtx, feedID, currentBlock, database.TriggerJoin, base, p.SubjectAddress, "")
		if err != nil {
			return fmt.Errorf("failed to rotate group key on join: %w", err)
		}
		if err := env.Rotator.PersistRotation(ctx, dtx, payload); err != nil {
			return err
		}
		if err := env.Store.Feeds().UpdateLastUpdatedAtBlock(ctx, dtx, feedID, currentBlock); err != nil {
			return err
		}
		rotation = &rotationResult{generation: payload.NewGeneration, validFromBlock: payload.ValidFromBlock}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to join group feed: %w", err)
	}

	refreshGroupKeyGenerationCache(env, feedID, rotation.generation, rotation.validFromBlock)
	observeKeyGeneration(env, feedID, rotation.generation)
	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Add(p.FeedID, p.SubjectAddress)
	}
	if env.Caches != nil && env.Caches.Metadata != nil {
		env.Caches.Metadata.UpdateLastBlockIndex(p.FeedID, currentBlock)
	}
	if env.Caches != nil && env.Caches.FeedList != nil {
		env.Caches.FeedList.Add(p.SubjectAddress, p.FeedID)
	}
	publish(ctx, env, "user_joined", p.FeedID, p.SubjectAddress, currentBlock, nil)
	return nil
}

// HandleAddMemberToGroupFeed is an admin-issued invitation; its store and
// rotation effects mirror Join, but the signatory is the inviting admin
// rather than the joining member (spec.md §4.4 "AddMemberToGroupFeed").
func HandleAddMemberToGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.AddMemberToGroupFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	var rotation *rotationResult
	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		base, err := env.Store.EntitledMembers(ctx, dtx, feedID)
		if err != nil {
			return err
		}
		if err := env.Store.AddOrRejoinParticipant(ctx, dtx, feedID, p.NewMemberAddress, currentBlock); err != nil {
			return err
		}
		payload, err := env.Rotator.Rotate(ctx, dtx, feedID, currentBlock, database.TriggerJoin, base, p.NewMemberAddress, "")
		if err != nil {
			return fmt.Errorf("failed to rotate group key on add-member: %w", err)
		}
		if err := env.Rotator.PersistRotation(ctx, dtx, payload); err != nil {
			return err
		}
		if err := env.Store.Feeds().UpdateLastUpdatedAtBlock(ctx, dtx, feedID, currentBlock); err != nil {
			return err
		}
		rotation = &rotationResult{generation: payload.NewGeneration, validFromBlock: payload.ValidFromBlock}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add member to group feed: %w", err)
	}

	refreshGroupKeyGenerationCache(env, feedID, rotation.generation, rotation.validFromBlock)
	observeKeyGeneration(env, feedID, rotation.generation)
	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Add(p.FeedID, p.NewMemberAddress)
	}
	if env.Caches != nil && env.Caches.FeedList != nil {
		env.Caches.FeedList.Add(p.NewMemberAddress, p.FeedID)
	}
	publish(ctx, env, "member_added", p.FeedID, p.NewMemberAddress, currentBlock, nil)
	return nil
}

// HandleLeaveGroupFeed removes the signatory's active seat and rotates the
// group key to exclude them (spec.md §4.4 "LeaveGroupFeed"). If the
// signatory was the sole remaining Admin, the group is soft-deleted
// instead of rotating, per the invariant that a group is never left
// without an Admin.
func HandleLeaveGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.LeaveGroupFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	var deleted bool
	var rotation *rotationResult
	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		wasSoleAdmin, err := isSoleActiveAdmin(ctx, env, dtx, feedID, p.SubjectAddress)
		if err != nil {
			return err
		}

		base, err := env.Store.EntitledMembers(ctx, dtx, feedID)
		if err != nil {
			return err
		}
		if err := env.Store.RemoveParticipant(ctx, dtx, feedID, p.SubjectAddress, currentBlock); err != nil {
			return err
		}

		if wasSoleAdmin {
			deleted = true
			return env.Store.SoftDeleteGroup(ctx, dtx, feedID)
		}

		payload, err := env.Rotator.Rotate(ctx, dtx, feedID, currentBlock, database.TriggerLeave, base, "", p.SubjectAddress)
		if err != nil {
			return fmt.Errorf("failed to rotate group key on leave: %w", err)
		}
		if err := env.Rotator.PersistRotation(ctx, dtx, payload); err != nil {
			return err
		}
		if err := env.Store.Feeds().UpdateLastUpdatedAtBlock(ctx, dtx, feedID, currentBlock); err != nil {
			return err
		}
		rotation = &rotationResult{generation: payload.NewGeneration, validFromBlock: payload.ValidFromBlock}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to leave group feed: %w", err)
	}

	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Remove(p.FeedID, p.SubjectAddress)
	}
	if env.Caches != nil && env.Caches.FeedList != nil {
		env.Caches.FeedList.Remove(p.SubjectAddress, p.FeedID)
	}
	if env.Caches != nil && env.Caches.Metadata != nil {
		env.Caches.Metadata.Remove(p.SubjectAddress, p.FeedID)
	}
	if deleted {
		publish(ctx, env, "group_feed_deleted", p.FeedID, p.SubjectAddress, currentBlock, map[string]interface{}{"reason": "sole_admin_left"})
		return nil
	}
	refreshGroupKeyGenerationCache(env, feedID, rotation.generation, rotation.validFromBlock)
	observeKeyGeneration(env, feedID, rotation.generation)
	publish(ctx, env, "user_left", p.FeedID, p.SubjectAddress, currentBlock, nil)
	return nil
}

type rotationResult struct {
	generation     int64
	validFromBlock uint64
}

func isSoleActiveAdmin(ctx context.Context, env *Env, dtx *database.Tx, feedID uuid.UUID, address string) (bool, error) {
	p, err := env.Store.Participants().GetActiveParticipant(ctx, dtx, feedID, address)
	if err != nil {
		return false, fmt.Errorf("failed to look up leaving participant: %w", err)
	}
	if p.Role != database.RoleAdmin {
		return false, nil
	}
	count, err := env.Store.Participants().CountActiveAdmins(ctx, dtx, feedID)
	if err != nil {
		return false, fmt.Errorf("failed to count active admins: %w", err)
	}
	return count == 1, nil
}

// Copyright 2025 Hush Network

package handlers

import (
	"context"
	"fmt"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// HandleBanFromGroupFeed removes a member and marks them Banned, rotating
// the group key to exclude them (spec.md §4.4 "BanFromGroupFeed"). Unlike
// Leave, a ban never soft-deletes the group even if it empties the
// remaining membership of non-admins — an admin banning the last other
// member is a valid end state.
func HandleBanFromGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.BanFromGroupFeedPayload
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
		if err := env.Store.SetParticipantRole(ctx, dtx, feedID, p.TargetAddress, database.RoleBanned); err != nil {
			return err
		}
		if err := env.Store.RemoveParticipant(ctx, dtx, feedID, p.TargetAddress, currentBlock); err != nil {
			return err
		}
		payload, err := env.Rotator.Rotate(ctx, dtx, feedID, currentBlock, database.TriggerBan, base, "", p.TargetAddress)
		if err != nil {
			return fmt.Errorf("failed to rotate group key on ban: %w", err)
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
		return fmt.Errorf("failed to ban member: %w", err)
	}

	refreshGroupKeyGenerationCache(env, feedID, rotation.generation, rotation.validFromBlock)
	observeKeyGeneration(env, feedID, rotation.generation)
	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Remove(p.FeedID, p.TargetAddress)
	}
	if env.Caches != nil && env.Caches.FeedList != nil {
		env.Caches.FeedList.Remove(p.TargetAddress, p.FeedID)
	}
	publish(ctx, env, "member_banned", p.FeedID, p.TargetAddress, currentBlock, nil)
	return nil
}

// HandleUnbanFromGroupFeed restores a banned address to an active Member
// seat and rotates the group key to re-entitle them (spec.md §4.4
// "UnbanFromGroupFeed": "Restore target role = Member. Rotate (joining =
// target, trigger = Unban)"). The unbanned member receives an
// encrypted_key entry only in this new generation and later; they are
// never re-entitled to generations that excluded them while banned.
func HandleUnbanFromGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.UnbanFromGroupFeedPayload
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
		if err := env.Store.AddOrRejoinParticipant(ctx, dtx, feedID, p.TargetAddress, currentBlock); err != nil {
			return err
		}
		payload, err := env.Rotator.Rotate(ctx, dtx, feedID, currentBlock, database.TriggerUnban, base, p.TargetAddress, "")
		if err != nil {
			return fmt.Errorf("failed to rotate group key on unban: %w", err)
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
		return fmt.Errorf("failed to unban member: %w", err)
	}

	refreshGroupKeyGenerationCache(env, feedID, rotation.generation, rotation.validFromBlock)
	observeKeyGeneration(env, feedID, rotation.generation)
	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Add(p.FeedID, p.TargetAddress)
	}
	if env.Caches != nil && env.Caches.FeedList != nil {
		env.Caches.FeedList.Add(p.TargetAddress, p.FeedID)
	}
	publish(ctx, env, "member_unbanned", p.FeedID, p.TargetAddress, currentBlock, nil)
	return nil
}

// HandleBlockMember mutes a member's send authorization without removing
// their seat or rotating the key (spec.md §4.4 "BlockMember"): the
// blocked member keeps reading, but future content validation rejects
// their writes.
func HandleBlockMember(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.BlockMemberPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.SetParticipantRole(ctx, dtx, feedID, p.TargetAddress, database.RoleBlocked)
	})
	if err != nil {
		return fmt.Errorf("failed to block member: %w", err)
	}

	publish(ctx, env, "member_blocked", p.FeedID, p.TargetAddress, currentBlock, nil)
	return nil
}

// HandleUnblockMember restores a blocked member's send authorization
// (spec.md §4.4 "UnblockMember").
func HandleUnblockMember(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.UnblockMemberPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.SetParticipantRole(ctx, dtx, feedID, p.TargetAddress, database.RoleMember)
	})
	if err != nil {
		return fmt.Errorf("failed to unblock member: %w", err)
	}

	publish(ctx, env, "member_unblocked", p.FeedID, p.TargetAddress, currentBlock, nil)
	return nil
}

// HandlePromoteToAdmin elevates a Member to Admin (spec.md §4.4
// "PromoteToAdmin"). No key rotation: Admin and Member hold the same
// symmetric key entitlement.
func HandlePromoteToAdmin(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.PromoteToAdminPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.SetParticipantRole(ctx, dtx, feedID, p.TargetAddress, database.RoleAdmin)
	})
	if err != nil {
		return fmt.Errorf("failed to promote member: %w", err)
	}

	publish(ctx, env, "member_promoted", p.FeedID, p.TargetAddress, currentBlock, nil)
	return nil
}

// Copyright 2025 Hush Network

package handlers

import (
	"context"
	"fmt"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// HandleDeleteGroupFeed soft-deletes a group (spec.md §4.4
// "DeleteGroupFeed"). History is preserved; no rows are removed.
func HandleDeleteGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.DeleteGroupFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.SoftDeleteGroup(ctx, dtx, feedID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete group feed: %w", err)
	}

	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Invalidate(p.FeedID)
	}
	if env.Caches != nil && env.Caches.KeyGenDoc != nil {
		env.Caches.KeyGenDoc.Invalidate(p.FeedID)
	}
	publish(ctx, env, "group_feed_deleted", p.FeedID, "", currentBlock, map[string]interface{}{"reason": "admin_delete"})
	return nil
}

// HandleUpdateGroupFeedTitle renames a group and cascades the change into
// every user's cached metadata hash (spec.md §4.4 "UpdateGroupFeedTitle",
// §4.6 "Feed metadata hash").
func HandleUpdateGroupFeedTitle(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.UpdateGroupFeedTitlePayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.UpdateGroupTitle(ctx, dtx, feedID, p.Title)
	})
	if err != nil {
		return fmt.Errorf("failed to update group title: %w", err)
	}

	if env.Caches != nil && env.Caches.Metadata != nil {
		env.Caches.Metadata.CascadeTitleChange(p.FeedID, p.Title)
	}
	publish(ctx, env, "group_title_updated", p.FeedID, "", currentBlock, map[string]interface{}{"title": p.Title})
	return nil
}

// HandleUpdateGroupFeedDescription updates a group's description
// (spec.md §4.4 "UpdateGroupFeedDescription").
func HandleUpdateGroupFeedDescription(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.UpdateGroupFeedDescriptionPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.UpdateGroupDescription(ctx, dtx, feedID, p.Description)
	})
	if err != nil {
		return fmt.Errorf("failed to update group description: %w", err)
	}

	publish(ctx, env, "group_description_updated", p.FeedID, "", currentBlock, nil)
	return nil
}

// HandleGroupFeedKeyRotation applies an explicit, pre-computed rotation
// submitted directly (spec.md §4.3 "Atomic persistence variant" / §4.4
// "GroupFeedKeyRotation"), bypassing the engine since the caller already
// performed the ECIES wrapping off-chain.
func HandleGroupFeedKeyRotation(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.GroupFeedKeyRotationPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		keyGenID, err := env.Store.KeyGenerations().InsertKeyGeneration(ctx, dtx, &database.KeyGeneration{
			FeedID:         feedID,
			Generation:     p.NewGeneration,
			ValidFromBlock: p.ValidFromBlock,
			Trigger:        database.TriggerManual,
		})
		if err != nil {
			return fmt.Errorf("failed to insert key generation: %w", err)
		}
		for _, k := range p.EncryptedKeys {
			if err := env.Store.KeyGenerations().InsertEncryptedMemberKey(ctx, dtx, &database.EncryptedMemberKey{
				KeyGenerationID: keyGenID,
				MemberAddress:   k.MemberAddress,
				EncryptedAESKey: k.EncryptedAESKey,
			}); err != nil {
				return fmt.Errorf("failed to insert encrypted member key for %s: %w", k.MemberAddress, err)
			}
		}
		return env.Store.Feeds().SetCurrentKeyGeneration(ctx, dtx, feedID, p.NewGeneration)
	})
	if err != nil {
		return fmt.Errorf("failed to apply explicit key rotation: %w", err)
	}

	refreshGroupKeyGenerationCache(env, feedID, p.NewGeneration, p.ValidFromBlock)
	observeKeyGeneration(env, feedID, p.NewGeneration)
	members := make([]string, 0, len(p.EncryptedKeys))
	for _, k := range p.EncryptedKeys {
		members = append(members, k.MemberAddress)
	}
	publish(ctx, env, "group_key_rotated", p.FeedID, "", currentBlock, map[string]interface{}{
		"generation": p.NewGeneration,
		"members":    members,
	})
	return nil
}

// Copyright 2025 Hush Network

package handlers

import (
	"context"
	"fmt"

	"github.com/hushnetwork-social/hush-server-node/pkg/cache"
	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
	"github.com/hushnetwork-social/hush-server-node/pkg/feeds"
)

// HandleNewPersonalFeed creates the caller's personal feed if one does not
// already exist (spec.md §4.4 "NewPersonalFeed"). A re-submission is a
// store-level no-op, not an error.
func HandleNewPersonalFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.NewPersonalFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	var created bool
	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		_, wasCreated, err := env.Store.CreatePersonalFeedIfAbsent(ctx, dtx, feedID, p.OwnerAddress, p.WrappedFeedKey, currentBlock)
		created = wasCreated
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create personal feed: %w", err)
	}

	if created {
		if env.Caches != nil && env.Caches.FeedList != nil {
			env.Caches.FeedList.Add(p.OwnerAddress, p.FeedID)
		}
		if env.Caches != nil && env.Caches.Metadata != nil {
			env.Caches.Metadata.Put(p.OwnerAddress, &cache.FeedMetadata{
				FeedID:         p.FeedID,
				Type:           string(database.FeedTypePersonal),
				Participants:   []string{p.OwnerAddress},
				CreatedAtBlock: currentBlock,
			})
		}
		publish(ctx, env, "personal_feed_created", p.FeedID, p.OwnerAddress, currentBlock, nil)
	}
	return nil
}

// HandleNewChatFeed creates a 2-party feed with both participants seated
// as Owner (spec.md §4.4 "NewChatFeed").
func HandleNewChatFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.NewChatFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}
	if len(p.Participants) != 2 {
		return fmt.Errorf("chat feed requires exactly 2 participants, got %d", len(p.Participants))
	}

	var participants [2]string
	copy(participants[:], p.Participants)

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		_, err := env.Store.CreateChatFeed(ctx, dtx, feedID, participants, [2][]byte{nil, nil}, currentBlock)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create chat feed: %w", err)
	}

	if env.Caches != nil && env.Caches.FeedList != nil {
		for _, addr := range participants {
			env.Caches.FeedList.Add(addr, p.FeedID)
		}
	}
	if env.Caches != nil && env.Caches.Metadata != nil {
		aliasA := resolveDisplayName(ctx, env, participants[0])
		aliasB := resolveDisplayName(ctx, env, participants[1])
		env.Caches.Metadata.Put(participants[0], &cache.FeedMetadata{
			FeedID: p.FeedID, Title: aliasB, Type: string(database.FeedTypeChat),
			Participants: participants[:], CreatedAtBlock: currentBlock,
		})
		env.Caches.Metadata.Put(participants[1], &cache.FeedMetadata{
			FeedID: p.FeedID, Title: aliasA, Type: string(database.FeedTypeChat),
			Participants: participants[:], CreatedAtBlock: currentBlock,
		})
	}
	publish(ctx, env, "chat_feed_created", p.FeedID, participants[0], currentBlock, nil)
	return nil
}

// HandleNewGroupFeed creates a group feed with generation 0 and one
// encrypted member key per initial participant (spec.md §4.4 "NewGroupFeed").
func HandleNewGroupFeed(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.NewGroupFeedPayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}

	members := make([]feeds.InitialMember, 0, len(p.EncryptedKeys))
	for _, k := range p.EncryptedKeys {
		members = append(members, feeds.InitialMember{Address: k.MemberAddress, EncryptedAESKey: k.EncryptedAESKey})
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		_, err := env.Store.CreateGroupFeed(ctx, dtx, feedID, p.Title, p.Description, p.IsPublic, p.CreatorAddress, members, currentBlock)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create group feed: %w", err)
	}

	addresses := make([]string, 0, len(members))
	for _, m := range members {
		addresses = append(addresses, m.Address)
		if env.Caches != nil && env.Caches.FeedList != nil {
			env.Caches.FeedList.Add(m.Address, p.FeedID)
		}
	}
	if env.Caches != nil && env.Caches.Participants != nil {
		env.Caches.Participants.Populate(p.FeedID, addresses)
	}
	if env.Caches != nil && env.Caches.Metadata != nil {
		generation := int64(0)
		for _, addr := range addresses {
			env.Caches.Metadata.Put(addr, &cache.FeedMetadata{
				FeedID: p.FeedID, Title: p.Title, Type: string(database.FeedTypeGroup),
				Participants: addresses, CreatedAtBlock: currentBlock, CurrentKeyGeneration: &generation,
			})
		}
	}
	refreshGroupKeyGenerationCache(env, feedID, 0, currentBlock)
	observeKeyGeneration(env, feedID, 0)
	publish(ctx, env, "group_feed_created", p.FeedID, p.CreatorAddress, currentBlock, map[string]interface{}{"title": p.Title})
	return nil
}

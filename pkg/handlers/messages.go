// Copyright 2025 Hush Network

package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/cache"
	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// HandleNewFeedMessage appends a message to a personal or chat feed
// (spec.md §4.4 "NewFeedMessage").
func HandleNewFeedMessage(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.NewFeedMessagePayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}
	messageID, err := parseUUID(p.MessageID)
	if err != nil {
		return err
	}

	var replyTo *uuid.UUID
	if p.ReplyTo != nil {
		id, err := parseUUID(*p.ReplyTo)
		if err != nil {
			return err
		}
		replyTo = &id
	}

	msg := &database.FeedMessage{
		MessageID:        messageID,
		FeedID:           feedID,
		Ciphertext:       p.Ciphertext,
		IssuerAddress:    p.IssuerAddress,
		BlockIndex:       currentBlock,
		AuthorCommitment: p.AuthorCommitment,
		ReplyTo:          replyTo,
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.AppendMessage(ctx, dtx, msg, currentBlock)
	})
	if err != nil {
		return fmt.Errorf("failed to append feed message: %w", err)
	}

	if env.Caches != nil && env.Caches.RecentMsgs != nil {
		env.Caches.RecentMsgs.Push(p.FeedID, cache.RecentMessage{
			MessageID:  p.MessageID,
			BlockIndex: currentBlock,
			Ciphertext: p.Ciphertext,
		})
	}
	if env.Caches != nil && env.Caches.Metadata != nil {
		env.Caches.Metadata.UpdateLastBlockIndex(p.FeedID, currentBlock)
	}
	publish(ctx, env, "message_posted", p.FeedID, p.IssuerAddress, currentBlock, map[string]interface{}{"message_id": p.MessageID})
	return nil
}

// HandleNewGroupFeedMessage appends a message to a group feed, recording
// the key generation it was encrypted under (spec.md §4.4
// "NewGroupFeedMessage").
func HandleNewGroupFeedMessage(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error {
	var p codec.NewGroupFeedMessagePayload
	if err := decodePayload(tx.Payload, &p); err != nil {
		return err
	}
	feedID, err := parseUUID(p.FeedID)
	if err != nil {
		return err
	}
	messageID, err := parseUUID(p.MessageID)
	if err != nil {
		return err
	}

	var replyTo *uuid.UUID
	if p.ReplyTo != nil {
		id, err := parseUUID(*p.ReplyTo)
		if err != nil {
			return err
		}
		replyTo = &id
	}

	generation := p.KeyGeneration
	msg := &database.FeedMessage{
		MessageID:        messageID,
		FeedID:           feedID,
		Ciphertext:       p.Ciphertext,
		IssuerAddress:    p.IssuerAddress,
		BlockIndex:       currentBlock,
		AuthorCommitment: p.AuthorCommitment,
		KeyGeneration:    &generation,
		ReplyTo:          replyTo,
	}

	err = env.Store.WithTx(ctx, func(dtx *database.Tx) error {
		return env.Store.AppendMessage(ctx, dtx, msg, currentBlock)
	})
	if err != nil {
		return fmt.Errorf("failed to append group feed message: %w", err)
	}

	if env.Caches != nil && env.Caches.RecentMsgs != nil {
		env.Caches.RecentMsgs.Push(p.FeedID, cache.RecentMessage{
			MessageID:  p.MessageID,
			BlockIndex: currentBlock,
			Ciphertext: p.Ciphertext,
		})
	}
	if env.Caches != nil && env.Caches.Metadata != nil {
		env.Caches.Metadata.UpdateLastBlockIndex(p.FeedID, currentBlock)
	}
	publish(ctx, env, "group_message_posted", p.FeedID, p.IssuerAddress, currentBlock, map[string]interface{}{
		"message_id":     p.MessageID,
		"key_generation": p.KeyGeneration,
	})
	return nil
}

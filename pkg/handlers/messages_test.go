// Copyright 2025 Hush Network

package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/feeds"
)

func TestHandleNewFeedMessageAppends(t *testing.T) {
	if testClient == nil {
		t.Skip("test database not configured")
	}
	alice := "0xalice_" + uuid.New().String()[:8]
	env := newTestEnv(t, alice)
	feedID := uuid.New()
	cleanupHandlerFeed(t, feedID)

	if _, _, err := env.Store.CreatePersonalFeedIfAbsent(context.Background(), testClient, feedID, alice, []byte("wrapped"), 1); err != nil {
		t.Fatalf("CreatePersonalFeedIfAbsent() error = %v", err)
	}

	msgID := uuid.New()
	payload, _ := json.Marshal(codec.NewFeedMessagePayload{
		MessageID: msgID.String(), FeedID: feedID.String(), Ciphertext: []byte("hi"), IssuerAddress: alice,
	})
	tx := &codec.ValidatedTransaction{Kind: codec.KindNewFeedMessage, Payload: payload}
	if err := HandleNewFeedMessage(context.Background(), env, tx, 5); err != nil {
		t.Fatalf("HandleNewFeedMessage() error = %v", err)
	}

	got, err := env.Store.Messages().GetMessage(context.Background(), testClient, msgID)
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if got.IssuerAddress != alice || got.BlockIndex != 5 {
		t.Fatalf("GetMessage() = %+v, want issuer=%s block=5", got, alice)
	}

	feed, err := env.Store.Feeds().GetFeed(context.Background(), testClient, feedID)
	if err != nil {
		t.Fatalf("GetFeed() error = %v", err)
	}
	if feed.LastUpdatedAtBlock != 5 {
		t.Fatalf("LastUpdatedAtBlock = %d, want 5", feed.LastUpdatedAtBlock)
	}
}

func TestHandleNewGroupFeedMessageRecordsGeneration(t *testing.T) {
	if testClient == nil {
		t.Skip("test database not configured")
	}
	admin := "0xadmin_" + uuid.New().String()[:8]
	env := newTestEnv(t, admin)
	feedID := uuid.New()
	cleanupHandlerFeed(t, feedID)

	if _, err := env.Store.CreateGroupFeed(context.Background(), testClient, feedID, "G", "", false, admin,
		[]feeds.InitialMember{{Address: admin}}, 1); err != nil {
		t.Fatalf("CreateGroupFeed() error = %v", err)
	}

	msgID := uuid.New()
	payload, _ := json.Marshal(codec.NewGroupFeedMessagePayload{
		MessageID: msgID.String(), FeedID: feedID.String(), Ciphertext: []byte("hi"),
		IssuerAddress: admin, KeyGeneration: 0,
	})
	tx := &codec.ValidatedTransaction{Kind: codec.KindNewGroupFeedMessage, Payload: payload}
	if err := HandleNewGroupFeedMessage(context.Background(), env, tx, 5); err != nil {
		t.Fatalf("HandleNewGroupFeedMessage() error = %v", err)
	}

	got, err := env.Store.Messages().GetMessage(context.Background(), testClient, msgID)
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if got.KeyGeneration == nil || *got.KeyGeneration != 0 {
		t.Fatalf("KeyGeneration = %v, want pointer to 0", got.KeyGeneration)
	}
}

// Copyright 2025 Hush Network
//
// Package initworkflow implements the startup initialization workflow
// (spec.md §4, component H): on node startup, ensure the local operator
// already has a personal feed, and if not, synthesize and submit the
// creation transaction. It never writes to the store directly — like any
// other transaction originator it goes through signing and the mempool,
// so the feed only comes into existence via the normal validate+dispatch
// path.

package initworkflow

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
	"github.com/hushnetwork-social/hush-server-node/pkg/events"
	"github.com/hushnetwork-social/hush-server-node/pkg/feeds"
	"github.com/hushnetwork-social/hush-server-node/pkg/mempool"
	"github.com/hushnetwork-social/hush-server-node/pkg/sig"
)

// Deps bundles the workflow's collaborators.
type Deps struct {
	Store    *feeds.Store
	Mempool  mempool.Submitter
	Bus      events.Bus
	Codec    *codec.Registry
	Logger   *log.Logger
}

// Result reports what the workflow did, useful for startup logging and tests.
type Result struct {
	AlreadyPresent bool
	FeedID         uuid.UUID
}

// Run ensures operatorAddress has a personal feed, synthesizing and
// submitting a NewPersonalFeed transaction signed by operatorKey if one
// does not exist yet. wrappedKey is the operator's own encryption key
// already wrapped for itself (owner-wrapped, per spec.md §4.4).
func Run(ctx context.Context, deps Deps, operatorAddress string, operatorKey *ecdsa.PrivateKey, wrappedKey []byte) (*Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[initworkflow] ", log.LstdFlags)
	}

	existing, err := deps.Store.Feeds().FindPersonalFeedByOwner(ctx, deps.Store.DB(), operatorAddress)
	if err != nil && err != database.ErrFeedNotFound {
		return nil, fmt.Errorf("failed to look up operator personal feed: %w", err)
	}
	if existing != nil {
		logger.Printf("operator %s already has a personal feed %s", operatorAddress, existing.FeedID)
		return &Result{AlreadyPresent: true, FeedID: existing.FeedID}, nil
	}

	feedID := uuid.New()
	payload := codec.NewPersonalFeedPayload{
		FeedID:         feedID.String(),
		OwnerAddress:   operatorAddress,
		WrappedFeedKey: wrappedKey,
	}
	raw, err := synthesize(deps.Codec, codec.KindNewPersonalFeed, payload, operatorKey, sig.AddressOf(operatorKey))
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize personal feed transaction: %w", err)
	}

	if err := deps.Mempool.SubmitVerified(ctx, raw); err != nil {
		return nil, fmt.Errorf("failed to submit personal feed transaction: %w", err)
	}

	if deps.Bus != nil {
		deps.Bus.Publish(ctx, events.Event{
			Kind:   "feeds_initialized",
			FeedID: feedID.String(),
			Actor:  operatorAddress,
			Data:   map[string]interface{}{"synthesized": true},
		})
	}

	logger.Printf("submitted personal feed creation for operator %s, feed %s", operatorAddress, feedID)
	return &Result{AlreadyPresent: false, FeedID: feedID}, nil
}

// synthesize canonically encodes payload, signs it and wraps it in the
// signed-transaction envelope the mempool and validator registry expect
// (spec.md §6 wire format).
func synthesize(reg *codec.Registry, kind codec.Kind, payload interface{}, key *ecdsa.PrivateKey, signatory sig.PublicAddress) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	signature, err := sig.Sign(key, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}

	signed := codec.SignedTransaction{
		Kind:    kind,
		Payload: payloadBytes,
		UserSignature: codec.Signature{
			Signatory:      string(signatory),
			SignatureBytes: signature,
		},
	}

	raw, err := json.Marshal(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction envelope: %w", err)
	}
	return raw, nil
}

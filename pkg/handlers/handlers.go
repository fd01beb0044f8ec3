// Copyright 2025 Hush Network
//
// Package handlers applies validated transactions to the feeds store. One
// handler exists per transaction kind (spec.md §4.4, component E); every
// handler's authoritative writes execute inside a single store
// transaction, with cache updates and event publication following in the
// exact order the corresponding spec section prescribes.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/cache"
	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/crypto/groupkey"
	"github.com/hushnetwork-social/hush-server-node/pkg/events"
	"github.com/hushnetwork-social/hush-server-node/pkg/feeds"
	"github.com/hushnetwork-social/hush-server-node/pkg/identity"
	"github.com/hushnetwork-social/hush-server-node/pkg/metrics"
)

// Caches bundles every derived-view cache a handler may need to update
// synchronously after its store transaction commits (spec.md §4.6).
type Caches struct {
	FeedList      *cache.FeedListCache
	Participants  *cache.ParticipantsCache
	RecentMsgs    *cache.RecentMessagesCache
	KeyGenDoc     *cache.KeyGenerationCache
	Metadata      *cache.MetadataCache
	DisplayNames  *cache.DisplayNameCache
	ReadWatermark *cache.ReadWatermarkCache
}

// Env bundles every collaborator a handler needs: the store, the key
// rotation engine, the identity directory, the derived-view caches, the
// event bus and metrics.
type Env struct {
	Store     *feeds.Store
	Rotator   *groupkey.Engine
	Directory identity.Directory
	Caches    *Caches
	Bus       events.Bus
	Metrics   *metrics.Metrics
	Logger    *log.Logger
}

// Handler applies one validated transaction's kind-specific effect.
type Handler func(ctx context.Context, env *Env, tx *codec.ValidatedTransaction, currentBlock uint64) error

// Registry maps every transaction kind to its unique handler
// (spec.md §4.4: "exactly one handler per kind").
type Registry struct {
	handlers map[codec.Kind]Handler
}

// NewRegistry wires every kind's handler.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[codec.Kind]Handler, len(codec.AllKinds))}

	r.handlers[codec.KindNewPersonalFeed] = HandleNewPersonalFeed
	r.handlers[codec.KindNewChatFeed] = HandleNewChatFeed
	r.handlers[codec.KindNewGroupFeed] = HandleNewGroupFeed
	r.handlers[codec.KindNewFeedMessage] = HandleNewFeedMessage
	r.handlers[codec.KindNewGroupFeedMessage] = HandleNewGroupFeedMessage
	r.handlers[codec.KindJoinGroupFeed] = HandleJoinGroupFeed
	r.handlers[codec.KindLeaveGroupFeed] = HandleLeaveGroupFeed
	r.handlers[codec.KindAddMemberToGroupFeed] = HandleAddMemberToGroupFeed
	r.handlers[codec.KindBanFromGroupFeed] = HandleBanFromGroupFeed
	r.handlers[codec.KindUnbanFromGroupFeed] = HandleUnbanFromGroupFeed
	r.handlers[codec.KindBlockMember] = HandleBlockMember
	r.handlers[codec.KindUnblockMember] = HandleUnblockMember
	r.handlers[codec.KindPromoteToAdmin] = HandlePromoteToAdmin
	r.handlers[codec.KindDeleteGroupFeed] = HandleDeleteGroupFeed
	r.handlers[codec.KindUpdateGroupFeedTitle] = HandleUpdateGroupFeedTitle
	r.handlers[codec.KindUpdateGroupFeedDescription] = HandleUpdateGroupFeedDescription
	r.handlers[codec.KindGroupFeedKeyRotation] = HandleGroupFeedKeyRotation

	return r
}

// Lookup returns the unique handler for a kind. A missing handler is a
// fatal indexing bug: every kind the codec registry knows must have
// exactly one handler wired here (spec.md §5).
func (r *Registry) Lookup(kind codec.Kind) (Handler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

func decodePayload(raw json.RawMessage, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

// publish fires a best-effort event; handlers never fail on bus errors.
func publish(ctx context.Context, env *Env, kind, feedID, actor string, block uint64, data map[string]interface{}) {
	if env.Bus == nil {
		return
	}
	env.Bus.Publish(ctx, events.Event{
		Kind:      kind,
		FeedID:    feedID,
		Actor:     actor,
		Block:     block,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// refreshGroupKeyGenerationCache invalidates the per-feed key-generation
// document cache and re-seeds it, matching the cache-aside pattern used
// for every rotation-triggering handler (spec.md §4.6 "Key generations").
func refreshGroupKeyGenerationCache(env *Env, feedID uuid.UUID, generation int64, validFromBlock uint64) {
	if env.Caches == nil || env.Caches.KeyGenDoc == nil {
		return
	}
	env.Caches.KeyGenDoc.Populate(&cache.KeyGenerationDocument{
		FeedID:            feedID.String(),
		CurrentGeneration: generation,
		ValidFromBlock:    validFromBlock,
	})
}

// resolveDisplayName resolves an address's alias cache-aside through the
// display-name cache, falling back to the identity directory on miss and
// repopulating the cache (spec.md §4.6 "Identity display names"). An
// address with no known profile resolves to itself.
func resolveDisplayName(ctx context.Context, env *Env, address string) string {
	if env.Caches != nil && env.Caches.DisplayNames != nil {
		if alias, ok := env.Caches.DisplayNames.Get(address); ok {
			return alias
		}
	}
	if env.Directory == nil {
		return address
	}
	profile, err := env.Directory.Lookup(ctx, address)
	if err != nil || profile.Alias == "" {
		return address
	}
	if env.Caches != nil && env.Caches.DisplayNames != nil {
		env.Caches.DisplayNames.Set(address, profile.Alias)
	}
	return profile.Alias
}

func observeKeyGeneration(env *Env, feedID uuid.UUID, generation int64) {
	if env.Metrics == nil {
		return
	}
	env.Metrics.CurrentKeyGeneration.WithLabelValues(feedID.String()).Set(float64(generation))
}

// Copyright 2025 Hush Network
//
// Package groupkey implements the key rotation engine (spec.md §4.3): it
// generates a fresh symmetric key for a group's new encryption epoch,
// wraps it for every entitled member via ECIES, and persists the result
// atomically alongside the group's current-generation pointer.

package groupkey

import (
	"context"
	"crypto/aes"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/database"
	"github.com/hushnetwork-social/hush-server-node/pkg/identity"
)

const (
	// MaxEntitledMembers bounds rotation membership (spec.md §6 config).
	MaxEntitledMembers = 512
	symmetricKeySize   = 32 // AES-256
)

var (
	// ErrUnknownFeed means the group has no recorded key generation yet.
	ErrUnknownFeed = errors.New("groupkey: unknown feed")
	// ErrEmptyMembership means the entitled set is empty after the delta.
	ErrEmptyMembership = errors.New("groupkey: empty membership")
	// ErrOversizedMembership means the entitled set exceeds MaxEntitledMembers.
	ErrOversizedMembership = errors.New("groupkey: oversized membership")
)

// IdentityUnavailableError means the directory could not resolve a
// member's public encryption key in time; the whole rotation aborts.
type IdentityUnavailableError struct {
	Address string
	Cause   error
}

func (e *IdentityUnavailableError) Error() string {
	return fmt.Sprintf("groupkey: identity unavailable for %s: %v", e.Address, e.Cause)
}

func (e *IdentityUnavailableError) Unwrap() error { return e.Cause }

// EncryptionFailedError means ECIES wrapping failed for a member.
type EncryptionFailedError struct {
	Address string
	Cause   error
}

func (e *EncryptionFailedError) Error() string {
	return fmt.Sprintf("groupkey: encryption failed for %s: %v", e.Address, e.Cause)
}

func (e *EncryptionFailedError) Unwrap() error { return e.Cause }

// WrappedKey is one member's ECIES-wrapped copy of the generation's
// symmetric key.
type WrappedKey struct {
	MemberAddress   string
	EncryptedAESKey []byte
}

// Payload is the result of a completed (but not yet persisted) rotation.
type Payload struct {
	FeedID             uuid.UUID
	NewGeneration      int64
	PreviousGeneration int64
	ValidFromBlock     uint64
	EncryptedKeys      []WrappedKey
	Trigger            database.RotationTrigger
}

// Engine rotates a group's symmetric encryption key.
type Engine struct {
	directory  identity.Directory
	keygenRepo *database.KeyGenerationRepository
	feedRepo   *database.FeedRepository
}

// NewEngine creates a key rotation engine.
func NewEngine(dir identity.Directory, keygenRepo *database.KeyGenerationRepository, feedRepo *database.FeedRepository) *Engine {
	return &Engine{directory: dir, keygenRepo: keygenRepo, feedRepo: feedRepo}
}

// Rotate runs the rotation algorithm (spec.md §4.3 steps 1-8) without
// persisting anything. baseMembers is the feed's current entitled set
// (Admin/Member/Blocked participants) before the join/leave delta is
// applied; joining/leaving are optional addresses, pass "" to omit either.
func (e *Engine) Rotate(
	ctx context.Context,
	db database.Queryer,
	feedID uuid.UUID,
	currentBlock uint64,
	trigger database.RotationTrigger,
	baseMembers []string,
	joining, leaving string,
) (*Payload, error) {
	maxGen, err := e.keygenRepo.GetMaxGeneration(ctx, db, feedID)
	if err != nil {
		if errors.Is(err, database.ErrKeyGenerationNotFound) {
			return nil, ErrUnknownFeed
		}
		return nil, fmt.Errorf("failed to read current generation: %w", err)
	}

	entitled := applyMembershipDelta(baseMembers, joining, leaving)

	if len(entitled) == 0 {
		return nil, ErrEmptyMembership
	}
	if len(entitled) > MaxEntitledMembers {
		return nil, ErrOversizedMembership
	}

	symmetricKey := make([]byte, symmetricKeySize)
	if _, err := rand.Read(symmetricKey); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}
	defer zeroize(symmetricKey)

	// Confirm the key is usable as an AES-256 key before wrapping it for
	// anyone.
	if _, err := aes.NewCipher(symmetricKey); err != nil {
		return nil, fmt.Errorf("generated symmetric key is invalid: %w", err)
	}

	wrapped := make([]WrappedKey, 0, len(entitled))
	for _, addr := range entitled {
		profile, err := e.directory.Lookup(ctx, addr)
		if err != nil {
			return nil, &IdentityUnavailableError{Address: addr, Cause: err}
		}
		if len(profile.PublicEncryptAddress) == 0 {
			return nil, &IdentityUnavailableError{Address: addr, Cause: errors.New("no public encryption key on file")}
		}

		pub, err := crypto.UnmarshalPubkey(profile.PublicEncryptAddress)
		if err != nil {
			return nil, &EncryptionFailedError{Address: addr, Cause: fmt.Errorf("invalid public key: %w", err)}
		}

		ciphertext, err := ecies.Encrypt(rand.Reader, ecies.ImportECDSAPublic(pub), symmetricKey, nil, nil)
		if err != nil {
			return nil, &EncryptionFailedError{Address: addr, Cause: err}
		}

		wrapped = append(wrapped, WrappedKey{MemberAddress: addr, EncryptedAESKey: ciphertext})
	}

	return &Payload{
		FeedID:             feedID,
		NewGeneration:      maxGen + 1,
		PreviousGeneration: maxGen,
		ValidFromBlock:     currentBlock,
		EncryptedKeys:      wrapped,
		Trigger:            trigger,
	}, nil
}

// PersistRotation inserts the new KeyGeneration row, its EncryptedMemberKey
// rows, and updates the group's current-generation pointer, all through the
// given db — the caller is responsible for wrapping db in a transaction so
// the whole operation is atomic (spec.md §4.3 "Atomic persistence variant").
func (e *Engine) PersistRotation(ctx context.Context, db database.Queryer, payload *Payload) error {
	keyGenID, err := e.keygenRepo.InsertKeyGeneration(ctx, db, &database.KeyGeneration{
		FeedID:         payload.FeedID,
		Generation:     payload.NewGeneration,
		ValidFromBlock: payload.ValidFromBlock,
		Trigger:        payload.Trigger,
	})
	if err != nil {
		return fmt.Errorf("failed to insert key generation: %w", err)
	}

	for _, wk := range payload.EncryptedKeys {
		if err := e.keygenRepo.InsertEncryptedMemberKey(ctx, db, &database.EncryptedMemberKey{
			KeyGenerationID: keyGenID,
			MemberAddress:   wk.MemberAddress,
			EncryptedAESKey: wk.EncryptedAESKey,
		}); err != nil {
			return fmt.Errorf("failed to insert encrypted member key for %s: %w", wk.MemberAddress, err)
		}
	}

	if err := e.feedRepo.SetCurrentKeyGeneration(ctx, db, payload.FeedID, payload.NewGeneration); err != nil {
		return fmt.Errorf("failed to advance current key generation: %w", err)
	}
	return nil
}

func applyMembershipDelta(base []string, joining, leaving string) []string {
	set := make(map[string]struct{}, len(base)+1)
	for _, addr := range base {
		set[addr] = struct{}{}
	}
	if leaving != "" {
		delete(set, leaving)
	}
	if joining != "" {
		set[joining] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	return out
}

func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Copyright 2025 Hush Network

package validate

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/config"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
	"github.com/hushnetwork-social/hush-server-node/pkg/sig"
)

// Registry runs content validation for every transaction kind. It is
// read-only against the store (spec.md §5 "Validator path").
type Registry struct {
	codec         *codec.Registry
	validators    map[codec.Kind]kindValidator
	validatorKey  *ecdsa.PrivateKey
	validatorAddr sig.PublicAddress
	feeds         *database.FeedRepository
	participants  *database.ParticipantRepository
	keygens       *database.KeyGenerationRepository
	limits        limits
}

// NewRegistry builds the content validator registry, signing accepted
// transactions with validatorKey. The title/cooldown/grace-period limits
// it enforces are read from cfg (spec.md §6) so environment overrides
// reach the validators instead of being shadowed by hardcoded defaults.
func NewRegistry(codecRegistry *codec.Registry, validatorKey *ecdsa.PrivateKey, cfg *config.Config) *Registry {
	r := &Registry{
		codec:         codecRegistry,
		validators:    make(map[codec.Kind]kindValidator, len(codec.AllKinds)),
		validatorKey:  validatorKey,
		validatorAddr: sig.AddressOf(validatorKey),
		feeds:         database.NewFeedRepository(),
		participants:  database.NewParticipantRepository(),
		keygens:       database.NewKeyGenerationRepository(),
		limits: limits{
			maxTitleLength:          cfg.MaxTitleLength,
			rejoinCooldownBlocks:    cfg.RejoinCooldownBlocks,
			keygenGracePeriodBlocks: cfg.KeygenGracePeriodBlocks,
		},
	}

	r.validators[codec.KindNewPersonalFeed] = validateNewPersonalFeed
	r.validators[codec.KindNewChatFeed] = validateNewChatFeed
	r.validators[codec.KindNewGroupFeed] = validateNewGroupFeed
	r.validators[codec.KindNewFeedMessage] = validateNewFeedMessage
	r.validators[codec.KindNewGroupFeedMessage] = validateNewGroupFeedMessage
	r.validators[codec.KindJoinGroupFeed] = validateJoinGroupFeed
	r.validators[codec.KindLeaveGroupFeed] = validateLeaveGroupFeed
	r.validators[codec.KindAddMemberToGroupFeed] = validateAddMemberToGroupFeed
	r.validators[codec.KindBanFromGroupFeed] = validateBanFromGroupFeed
	r.validators[codec.KindUnbanFromGroupFeed] = validateUnbanFromGroupFeed
	r.validators[codec.KindBlockMember] = validateBlockMember
	r.validators[codec.KindUnblockMember] = validateUnblockMember
	r.validators[codec.KindPromoteToAdmin] = validatePromoteToAdmin
	r.validators[codec.KindDeleteGroupFeed] = validateDeleteGroupFeed
	r.validators[codec.KindUpdateGroupFeedTitle] = validateUpdateGroupFeedTitle
	r.validators[codec.KindUpdateGroupFeedDescription] = validateUpdateGroupFeedDescription
	r.validators[codec.KindGroupFeedKeyRotation] = validateGroupFeedKeyRotation

	return r
}

// Validate runs the full content-validation pipeline against a raw signed
// transaction: decode, verify the user signature, run the kind-specific
// validator, and on acceptance attach a validator signature.
func (r *Registry) Validate(ctx context.Context, db database.Queryer, currentBlock uint64, raw []byte) (Verdict, error) {
	signedTx, payload, err := r.codec.ParseSigned(raw)
	if err != nil {
		return reject(fmt.Sprintf("decode failed: %v", err)), nil
	}

	validOk, err := sig.Verify(sig.PublicAddress(signedTx.UserSignature.Signatory), signedTx.Payload, signedTx.UserSignature.SignatureBytes)
	if err != nil || !validOk {
		return reject("user signature verification failed"), nil
	}

	validator, ok := r.validators[signedTx.Kind]
	if !ok {
		return reject("unrecognized transaction kind"), nil
	}

	d := &deps{db: db, feeds: r.feeds, participants: r.participants, keygens: r.keygens, limits: r.limits}
	accepted, reason := validator(ctx, d, currentBlock, signedTx.UserSignature.Signatory, payload)
	if !accepted {
		return reject(reason), nil
	}

	validatorSig, err := sig.Sign(r.validatorKey, signedTx.Payload)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to sign validated transaction: %w", err)
	}

	validatedTx := &codec.ValidatedTransaction{
		Kind:          signedTx.Kind,
		Payload:       signedTx.Payload,
		UserSignature: signedTx.UserSignature,
		ValidatorSignature: codec.Signature{
			Signatory:      string(r.validatorAddr),
			SignatureBytes: validatorSig,
		},
	}
	return accept(validatedTx), nil
}

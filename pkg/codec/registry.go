// Copyright 2025 Hush Network

package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when the wire payload does not match
// the shape its kind tag declares.
var ErrMalformedPayload = errors.New("codec: malformed payload")

// ErrUnknownKind is returned when a transaction carries a kind tag the
// registry has no parser for.
var ErrUnknownKind = errors.New("codec: unknown transaction kind")

// Signature is the signatory/signature-bytes pair carried by both the
// user_signature and validator_signature envelope slots.
type Signature struct {
	Signatory      string `json:"signatory"`
	SignatureBytes []byte `json:"signature_bytes"`
}

// SignedTransaction is a transaction carrying only the user's signature,
// the shape produced by the mempool-submission path before validation.
type SignedTransaction struct {
	Kind          Kind            `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	UserSignature Signature       `json:"user_signature"`
}

// ValidatedTransaction additionally carries the validator's signature,
// attached once a content validator accepts the transaction.
type ValidatedTransaction struct {
	Kind               Kind            `json:"kind"`
	Payload            json.RawMessage `json:"payload"`
	UserSignature      Signature       `json:"user_signature"`
	ValidatorSignature Signature       `json:"validator_signature"`
}

// payloadFactory returns a fresh pointer to the kind's zero-valued
// payload struct, suitable as a json.Unmarshal target.
type payloadFactory func() interface{}

// Registry maps transaction kind to its payload shape. Registration
// happens once at startup via NewRegistry; there is no mutation after.
type Registry struct {
	factories map[Kind]payloadFactory
}

// NewRegistry builds the registry for every kind in AllKinds.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[Kind]payloadFactory, len(AllKinds))}

	r.register(KindNewPersonalFeed, func() interface{} { return &NewPersonalFeedPayload{} })
	r.register(KindNewChatFeed, func() interface{} { return &NewChatFeedPayload{} })
	r.register(KindNewGroupFeed, func() interface{} { return &NewGroupFeedPayload{} })
	r.register(KindNewFeedMessage, func() interface{} { return &NewFeedMessagePayload{} })
	r.register(KindNewGroupFeedMessage, func() interface{} { return &NewGroupFeedMessagePayload{} })
	r.register(KindJoinGroupFeed, func() interface{} { return &JoinGroupFeedPayload{} })
	r.register(KindLeaveGroupFeed, func() interface{} { return &LeaveGroupFeedPayload{} })
	r.register(KindAddMemberToGroupFeed, func() interface{} { return &AddMemberToGroupFeedPayload{} })
	r.register(KindBanFromGroupFeed, func() interface{} { return &BanFromGroupFeedPayload{} })
	r.register(KindUnbanFromGroupFeed, func() interface{} { return &UnbanFromGroupFeedPayload{} })
	r.register(KindBlockMember, func() interface{} { return &BlockMemberPayload{} })
	r.register(KindUnblockMember, func() interface{} { return &UnblockMemberPayload{} })
	r.register(KindPromoteToAdmin, func() interface{} { return &PromoteToAdminPayload{} })
	r.register(KindDeleteGroupFeed, func() interface{} { return &DeleteGroupFeedPayload{} })
	r.register(KindUpdateGroupFeedTitle, func() interface{} { return &UpdateGroupFeedTitlePayload{} })
	r.register(KindUpdateGroupFeedDescription, func() interface{} { return &UpdateGroupFeedDescriptionPayload{} })
	r.register(KindGroupFeedKeyRotation, func() interface{} { return &GroupFeedKeyRotationPayload{} })

	return r
}

func (r *Registry) register(k Kind, f payloadFactory) {
	r.factories[k] = f
}

// ParseSigned decodes the outer envelope and then the kind-specific
// payload, returning the decoded payload alongside the envelope.
func (r *Registry) ParseSigned(raw []byte) (*SignedTransaction, interface{}, error) {
	var tx SignedTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	payload, err := r.decodePayload(tx.Kind, tx.Payload)
	if err != nil {
		return nil, nil, err
	}
	return &tx, payload, nil
}

// ParseValidated decodes a transaction that has already passed content
// validation and carries a validator signature.
func (r *Registry) ParseValidated(raw []byte) (*ValidatedTransaction, interface{}, error) {
	var tx ValidatedTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	payload, err := r.decodePayload(tx.Kind, tx.Payload)
	if err != nil {
		return nil, nil, err
	}
	return &tx, payload, nil
}

func (r *Registry) decodePayload(k Kind, raw json.RawMessage) (interface{}, error) {
	factory, ok := r.factories[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	payload := factory()
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return payload, nil
}

// EncodeValidated re-serializes a validated transaction for mempool
// submission, used by validators after attaching their signature.
func EncodeValidated(tx *ValidatedTransaction) ([]byte, error) {
	out, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode validated transaction: %w", err)
	}
	return out, nil
}

// Copyright 2025 Hush Network
//
// Package sig provides secp256k1 sign/verify helpers over the canonical
// JSON encoding of transaction payloads, used for both user_signature and
// validator_signature envelope fields (spec.md §6).

package sig

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// PublicAddress is the hex-encoded secp256k1 address derived from a
// signatory's public key.
type PublicAddress string

// GenerateKey creates a new secp256k1 keypair.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return key, nil
}

// AddressOf returns the public address for a private key.
func AddressOf(key *ecdsa.PrivateKey) PublicAddress {
	publicKeyECDSA := key.Public().(*ecdsa.PublicKey)
	return PublicAddress(crypto.PubkeyToAddress(*publicKeyECDSA).Hex())
}

// Sign canonically JSON-encodes payload and signs its keccak256 hash.
func Sign(key *ecdsa.PrivateKey, payload interface{}) ([]byte, error) {
	digest, err := digestOf(payload)
	if err != nil {
		return nil, err
	}
	signature, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}
	return signature, nil
}

// Verify checks that signature was produced by signatory over payload.
func Verify(signatory PublicAddress, payload interface{}, signature []byte) (bool, error) {
	digest, err := digestOf(payload)
	if err != nil {
		return false, err
	}

	// crypto.Sign appends a recovery id; SigToPub needs the full 65 bytes.
	if len(signature) != 65 {
		return false, fmt.Errorf("signature must be 65 bytes, got %d", len(signature))
	}

	recovered, err := crypto.SigToPub(digest, signature)
	if err != nil {
		return false, fmt.Errorf("failed to recover public key: %w", err)
	}

	recoveredAddress := crypto.PubkeyToAddress(*recovered).Hex()
	return PublicAddress(recoveredAddress) == signatory, nil
}

func digestOf(payload interface{}) ([]byte, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize payload for signing: %w", err)
	}
	return crypto.Keccak256(canonical), nil
}

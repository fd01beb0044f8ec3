// Copyright 2025 Hush Network

package codec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRegistryParseSignedRoundTrip(t *testing.T) {
	r := NewRegistry()

	payload := NewPersonalFeedPayload{
		FeedID:         uuid.New().String(),
		OwnerAddress:   "0xabc",
		WrappedFeedKey: []byte{1, 2, 3},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	raw, err := json.Marshal(SignedTransaction{
		Kind:          KindNewPersonalFeed,
		Payload:       payloadBytes,
		UserSignature: Signature{Signatory: "0xabc", SignatureBytes: []byte{9}},
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	tx, decoded, err := r.ParseSigned(raw)
	if err != nil {
		t.Fatalf("ParseSigned: %v", err)
	}
	if tx.Kind != KindNewPersonalFeed {
		t.Fatalf("Kind = %v, want KindNewPersonalFeed", tx.Kind)
	}

	got, ok := decoded.(*NewPersonalFeedPayload)
	if !ok {
		t.Fatalf("decoded payload has type %T, want *NewPersonalFeedPayload", decoded)
	}
	if got.OwnerAddress != "0xabc" {
		t.Fatalf("OwnerAddress = %q, want 0xabc", got.OwnerAddress)
	}
}

func TestRegistryParseSignedUnknownKind(t *testing.T) {
	r := NewRegistry()
	unknown := Kind(uuid.New())

	raw, _ := json.Marshal(SignedTransaction{Kind: unknown, Payload: json.RawMessage(`{}`)})
	_, _, err := r.ParseSigned(raw)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("err = %v, want ErrUnknownKind", err)
	}
}

func TestRegistryParseSignedMalformedEnvelope(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.ParseSigned([]byte("not json"))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestRegistryParseSignedMalformedPayloadShape(t *testing.T) {
	r := NewRegistry()
	raw, _ := json.Marshal(SignedTransaction{
		Kind:    KindNewChatFeed,
		Payload: json.RawMessage(`{"participants": "not-an-array"}`),
	})
	_, _, err := r.ParseSigned(raw)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestAllKindsHaveUniqueStableTags(t *testing.T) {
	seen := make(map[Kind]bool, len(AllKinds))
	for _, k := range AllKinds {
		if seen[k] {
			t.Fatalf("duplicate kind tag: %v", k)
		}
		seen[k] = true
	}
	if len(AllKinds) != 17 {
		t.Fatalf("len(AllKinds) = %d, want 17", len(AllKinds))
	}
}

func TestKindStringIsDeterministic(t *testing.T) {
	if KindNewPersonalFeed.String() != KindNewPersonalFeed.String() {
		t.Fatal("Kind.String() should be deterministic")
	}
	if kind("NewPersonalFeed") != KindNewPersonalFeed {
		t.Fatal("kind tags must be derived deterministically from their name")
	}
}

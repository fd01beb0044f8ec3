// Copyright 2025 Hush Network

package sig

import "testing"

type samplePayload struct {
	FeedID string `json:"feed_id"`
	Value  int    `json:"value"`
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	payload := samplePayload{FeedID: "abc", Value: 42}

	signature, err := Sign(key, payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(AddressOf(key), payload, signature)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsWrongSignatory(t *testing.T) {
	key, _ := GenerateKey()
	other, _ := GenerateKey()
	payload := samplePayload{FeedID: "abc", Value: 1}

	signature, err := Sign(key, payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	ok, err := Verify(AddressOf(other), payload, signature)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected signature to fail verification against a different signatory")
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	key, _ := GenerateKey()
	payload := samplePayload{FeedID: "abc", Value: 1}

	signature, err := Sign(key, payload)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tampered := samplePayload{FeedID: "abc", Value: 2}
	ok, err := Verify(AddressOf(key), tampered, signature)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("expected tampered payload to fail verification")
	}
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	key, _ := GenerateKey()
	payload := samplePayload{FeedID: "abc", Value: 1}

	_, err := Verify(AddressOf(key), payload, []byte{0x01, 0x02})
	if err == nil {
		t.Fatal("expected an error for a short signature")
	}
}

// Copyright 2025 Hush Network

package validate

import (
	"strings"
	"testing"

	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

func TestSignatoryEqualsSubject(t *testing.T) {
	cases := []struct {
		signatory, subject string
		want                bool
	}{
		{"0xabc", "0xabc", true},
		{"0xabc", "0xdef", false},
		{"", "", false},
		{"", "0xabc", false},
	}
	for _, c := range cases {
		if got := signatoryEqualsSubject(c.signatory, c.subject); got != c.want {
			t.Errorf("signatoryEqualsSubject(%q, %q) = %v, want %v", c.signatory, c.subject, got, c.want)
		}
	}
}

func TestRejoinCooldownSatisfied(t *testing.T) {
	block99 := uint64(0)
	p := &database.FeedParticipant{LastLeaveBlock: &block99}
	d := &deps{limits: limits{rejoinCooldownBlocks: 100}}

	if d.rejoinCooldownSatisfied(99, p) {
		t.Fatal("expected cooldown unmet at exactly 99 blocks")
	}
	if !d.rejoinCooldownSatisfied(100, p) {
		t.Fatal("expected cooldown satisfied at exactly 100 blocks")
	}
	if !d.rejoinCooldownSatisfied(101, p) {
		t.Fatal("expected cooldown satisfied beyond 100 blocks")
	}
}

func TestRejoinCooldownSatisfiedNilParticipant(t *testing.T) {
	d := &deps{limits: limits{rejoinCooldownBlocks: 100}}
	if !d.rejoinCooldownSatisfied(5, nil) {
		t.Fatal("a participant who never left has no cooldown to satisfy")
	}
	if !d.rejoinCooldownSatisfied(5, &database.FeedParticipant{LastLeaveBlock: nil}) {
		t.Fatal("a participant with no recorded leave has no cooldown to satisfy")
	}
}

func TestRejoinCooldownSatisfiedUsesConfiguredLimit(t *testing.T) {
	block0 := uint64(0)
	p := &database.FeedParticipant{LastLeaveBlock: &block0}
	d := &deps{limits: limits{rejoinCooldownBlocks: 10}}

	if d.rejoinCooldownSatisfied(9, p) {
		t.Fatal("expected cooldown unmet below the configured 10-block limit")
	}
	if !d.rejoinCooldownSatisfied(10, p) {
		t.Fatal("expected cooldown satisfied at the configured 10-block limit")
	}
}

func TestTitleValid(t *testing.T) {
	d := &deps{limits: limits{maxTitleLength: 100}}
	if d.titleValid("") {
		t.Fatal("empty title must be invalid")
	}
	if !d.titleValid(strings.Repeat("a", 100)) {
		t.Fatal("a 100-rune title must be valid")
	}
	if d.titleValid(strings.Repeat("a", 101)) {
		t.Fatal("a 101-rune title must be invalid")
	}
	if !d.titleValid("héllo wörld") {
		t.Fatal("multi-byte runes should count as runes, not bytes")
	}
}

func TestTitleValidUsesConfiguredLimit(t *testing.T) {
	d := &deps{limits: limits{maxTitleLength: 5}}
	if !d.titleValid("abcde") {
		t.Fatal("a title at the configured 5-rune limit must be valid")
	}
	if d.titleValid("abcdef") {
		t.Fatal("a title over the configured 5-rune limit must be invalid")
	}
}

func TestNoDuplicateOrEmptyAddresses(t *testing.T) {
	if !noDuplicateOrEmptyAddresses([]string{"a", "b", "c"}) {
		t.Fatal("expected distinct non-empty addresses to pass")
	}
	if noDuplicateOrEmptyAddresses([]string{"a", "a"}) {
		t.Fatal("expected a duplicate address to fail")
	}
	if noDuplicateOrEmptyAddresses([]string{"a", ""}) {
		t.Fatal("expected an empty address to fail")
	}
	if !noDuplicateOrEmptyAddresses(nil) {
		t.Fatal("expected an empty list to pass")
	}
}

func TestAuthorCommitmentValid(t *testing.T) {
	if !authorCommitmentValid(nil) {
		t.Fatal("a nil commitment (absent) must be valid")
	}
	if !authorCommitmentValid(make([]byte, 32)) {
		t.Fatal("a 32-byte commitment must be valid")
	}
	if authorCommitmentValid(make([]byte, 31)) {
		t.Fatal("a 31-byte commitment must be invalid")
	}
	if authorCommitmentValid(make([]byte, 33)) {
		t.Fatal("a 33-byte commitment must be invalid")
	}
}

func TestKeyRotationPayloadWellFormed(t *testing.T) {
	keys := []EncryptedKeyView{{MemberAddress: "alice", EncryptedAESKey: []byte{1}}}

	if !keyRotationPayloadWellFormed(3, 4, 100, keys) {
		t.Fatal("expected a well-formed sequential rotation to pass")
	}
	if keyRotationPayloadWellFormed(3, 5, 100, keys) {
		t.Fatal("expected a non-sequential generation jump to fail")
	}
	if keyRotationPayloadWellFormed(3, 4, 0, keys) {
		t.Fatal("expected a zero validFromBlock to fail")
	}
	if keyRotationPayloadWellFormed(3, 4, 100, nil) {
		t.Fatal("expected an empty key set to fail")
	}
	if keyRotationPayloadWellFormed(3, 4, 100, []EncryptedKeyView{{MemberAddress: "", EncryptedAESKey: []byte{1}}}) {
		t.Fatal("expected an empty member address to fail")
	}
	if keyRotationPayloadWellFormed(3, 4, 100, []EncryptedKeyView{{MemberAddress: "alice", EncryptedAESKey: nil}}) {
		t.Fatal("expected an empty wrapped key to fail")
	}
	dup := []EncryptedKeyView{
		{MemberAddress: "alice", EncryptedAESKey: []byte{1}},
		{MemberAddress: "alice", EncryptedAESKey: []byte{2}},
	}
	if keyRotationPayloadWellFormed(3, 4, 100, dup) {
		t.Fatal("expected a duplicate member address to fail")
	}
}

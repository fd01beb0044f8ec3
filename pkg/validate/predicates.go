// Copyright 2025 Hush Network

package validate

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// limits bundles the config-driven bounds the predicates enforce
// (spec.md §6 config defaults). Zero values fall back to the spec's
// documented defaults so a deps built without an explicit limits still
// behaves sanely.
type limits struct {
	maxTitleLength          int
	rejoinCooldownBlocks    uint64
	keygenGracePeriodBlocks uint64
}

func (l limits) titleLength() int {
	if l.maxTitleLength > 0 {
		return l.maxTitleLength
	}
	return 100
}

func (l limits) rejoinCooldown() uint64 {
	if l.rejoinCooldownBlocks > 0 {
		return l.rejoinCooldownBlocks
	}
	return 100
}

func (l limits) keygenGracePeriod() uint64 {
	if l.keygenGracePeriodBlocks > 0 {
		return l.keygenGracePeriodBlocks
	}
	return 5
}

// deps bundles the read-only collaborators every validator needs.
type deps struct {
	db           database.Queryer
	feeds        *database.FeedRepository
	participants *database.ParticipantRepository
	keygens      *database.KeyGenerationRepository
	limits       limits
}

// signatoryEqualsSubject enforces that self-affecting actions (Join,
// Leave) are signed by the address they affect.
func signatoryEqualsSubject(signatory, subject string) bool {
	return signatory != "" && signatory == subject
}

// adminOnly enforces that the signatory currently holds Admin role in the
// target group.
func (d *deps) adminOnly(ctx context.Context, feedID uuid.UUID, signatory string) bool {
	p, err := d.participants.GetActiveParticipant(ctx, d.db, feedID, signatory)
	if err != nil {
		return false
	}
	return p.Role == database.RoleAdmin
}

// groupLive enforces that the target group exists and is not deleted.
func (d *deps) groupLive(ctx context.Context, feedID uuid.UUID) (*database.Feed, bool) {
	feed, err := d.feeds.GetFeed(ctx, d.db, feedID)
	if err != nil {
		return nil, false
	}
	if feed.Type != database.FeedTypeGroup || feed.IsDeleted {
		return nil, false
	}
	return feed, true
}

// participantState resolves a target's current membership state, if any.
// The zero value with ok=false means the address has never participated.
func (d *deps) participantState(ctx context.Context, feedID uuid.UUID, address string) (*database.FeedParticipant, bool) {
	p, err := d.participants.GetParticipant(ctx, d.db, feedID, address)
	if err != nil {
		if errors.Is(err, database.ErrParticipantNotFound) {
			return nil, false
		}
		return nil, false
	}
	return p, true
}

// canJoinOrBeAdded checks the AddMember/Join target-state rule: the
// target must not exist as a participant, or exist only with an active
// leave and not be Banned.
func (d *deps) canJoinOrBeAdded(ctx context.Context, feedID uuid.UUID, address string) bool {
	p, ok := d.participantState(ctx, feedID, address)
	if !ok {
		return true
	}
	if p.IsActive() {
		return false
	}
	return p.Role != database.RoleBanned
}

// rejoinCooldownSatisfied checks Join's cooldown rule against the
// target's last_leave_block.
func (d *deps) rejoinCooldownSatisfied(currentBlock uint64, p *database.FeedParticipant) bool {
	if p == nil || p.LastLeaveBlock == nil {
		return true
	}
	return currentBlock-*p.LastLeaveBlock >= d.limits.rejoinCooldown()
}

// titleValid enforces the field-constraints rule for title fields.
func (d *deps) titleValid(title string) bool {
	if title == "" {
		return false
	}
	return utf8.RuneCountInString(title) <= d.limits.titleLength()
}

// noDuplicateOrEmptyAddresses enforces NewGroupFeed's participant-list rule.
func noDuplicateOrEmptyAddresses(addresses []string) bool {
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		if a == "" {
			return false
		}
		if _, dup := seen[a]; dup {
			return false
		}
		seen[a] = struct{}{}
	}
	return true
}

// authorCommitmentValid enforces the fixed-length rule when present.
func authorCommitmentValid(commitment []byte) bool {
	if commitment == nil {
		return true
	}
	return len(commitment) == 32
}

// onlyRemainingAdmin checks DeleteGroup's rule: the signatory must be the
// sole active Admin.
func (d *deps) onlyRemainingAdmin(ctx context.Context, feedID uuid.UUID, signatory string) bool {
	if !d.adminOnly(ctx, feedID, signatory) {
		return false
	}
	count, err := d.participants.CountActiveAdmins(ctx, d.db, feedID)
	if err != nil {
		return false
	}
	return count == 1
}

// keyRotationPayloadWellFormed checks the structural rules for an
// explicit KeyRotation transaction.
func keyRotationPayloadWellFormed(previousGeneration, newGeneration int64, validFromBlock uint64, keys []EncryptedKeyView) bool {
	if newGeneration != previousGeneration+1 || newGeneration <= 0 {
		return false
	}
	if validFromBlock == 0 {
		return false
	}
	if len(keys) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k.MemberAddress == "" || len(k.EncryptedAESKey) == 0 {
			return false
		}
		if _, dup := seen[k.MemberAddress]; dup {
			return false
		}
		seen[k.MemberAddress] = struct{}{}
	}
	return true
}

// EncryptedKeyView is the minimal shape keyRotationPayloadWellFormed needs,
// kept independent of codec.EncryptedKeyPair to avoid coupling predicates
// to wire types.
type EncryptedKeyView struct {
	MemberAddress   string
	EncryptedAESKey []byte
}

// groupMessageGenerationAccepted checks the acceptance window rule for
// group messages: current generation, or current-1 within the grace period.
func groupMessageGenerationAccepted(ctx context.Context, d *deps, feedID uuid.UUID, currentBlock uint64, currentGeneration, messageGeneration int64) bool {
	if messageGeneration == currentGeneration {
		return true
	}
	if messageGeneration != currentGeneration-1 {
		return false
	}
	cur, err := d.keygens.GetKeyGeneration(ctx, d.db, feedID, currentGeneration)
	if err != nil {
		return false
	}
	return currentBlock-cur.ValidFromBlock < d.limits.keygenGracePeriod()
}

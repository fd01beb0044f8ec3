// Copyright 2025 Hush Network

package validate

import (
	"context"

	"github.com/google/uuid"

	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
)

// kindValidator checks kind-specific content rules against an already
// signature-verified transaction. It returns (true, "") when the payload
// should be accepted, or (false, reason) when it should be rejected.
type kindValidator func(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string)

func validateNewPersonalFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.NewPersonalFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if p.FeedID == "" {
		return false, "empty feed id"
	}
	if len(p.WrappedFeedKey) == 0 {
		return false, "empty wrapped feed key"
	}
	if !signatoryEqualsSubject(signatory, p.OwnerAddress) {
		return false, "signatory must be the feed owner"
	}
	return true, ""
}

func validateNewChatFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.NewChatFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if len(p.Participants) != 2 {
		return false, "chat feed requires exactly 2 participants"
	}
	if !noDuplicateOrEmptyAddresses(p.Participants) {
		return false, "duplicate or empty participant address"
	}
	found := false
	for _, addr := range p.Participants {
		if addr == signatory {
			found = true
		}
	}
	if !found {
		return false, "signatory must be a participant"
	}
	return true, ""
}

func validateNewGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.NewGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if !d.titleValid(p.Title) {
		return false, "invalid title"
	}
	if len(p.Participants) < 1 {
		return false, "group requires at least one participant"
	}
	if !noDuplicateOrEmptyAddresses(p.Participants) {
		return false, "duplicate or empty participant address"
	}
	found := false
	for _, addr := range p.Participants {
		if addr == p.CreatorAddress {
			found = true
		}
	}
	if !found {
		return false, "creator must be included in participants"
	}
	if signatory != p.CreatorAddress {
		return false, "signatory must be the creator"
	}
	return true, ""
}

func validateJoinGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.JoinGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if !signatoryEqualsSubject(signatory, p.SubjectAddress) {
		return false, "signatory must equal subject"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	feed, live := d.groupLive(ctx, feedID)
	if !live {
		return false, "group not found or deleted"
	}
	if !feed.IsPublic && len(p.InvitationToken) == 0 {
		return false, "private group requires an invitation token"
	}
	if !d.canJoinOrBeAdded(ctx, feedID, p.SubjectAddress) {
		return false, "subject already an active or banned participant"
	}
	existing, _ := d.participantState(ctx, feedID, p.SubjectAddress)
	if !d.rejoinCooldownSatisfied(currentBlock, existing) {
		return false, "rejoin cooldown not satisfied"
	}
	return true, ""
}

func validateAddMemberToGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.AddMemberToGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.adminOnly(ctx, feedID, signatory) {
		return false, "signatory must be an admin"
	}
	if len(p.NewMemberPublicEncryptKey) == 0 {
		return false, "missing new member public encryption key"
	}
	if !d.canJoinOrBeAdded(ctx, feedID, p.NewMemberAddress) {
		return false, "target already an active or banned participant"
	}
	return true, ""
}

func validateLeaveGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.LeaveGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if !signatoryEqualsSubject(signatory, p.SubjectAddress) {
		return false, "signatory must equal subject"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	active, ok := d.participantState(ctx, feedID, p.SubjectAddress)
	if !ok || !active.IsActive() {
		return false, "subject is not an active participant"
	}
	return true, ""
}

func validateAdminTargetAction(
	ctx context.Context, d *deps, feedIDStr, target string, signatory string,
	wantRole database.ParticipantRole, allowedCurrent []database.ParticipantRole,
) (bool, string) {
	feedID, err := uuid.Parse(feedIDStr)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.adminOnly(ctx, feedID, signatory) {
		return false, "signatory must be an admin"
	}
	p, ok := d.participantState(ctx, feedID, target)
	if !ok || !p.IsActive() {
		return false, "target is not an active participant"
	}
	for _, role := range allowedCurrent {
		if p.Role == role {
			return true, ""
		}
	}
	return false, "target is not in an eligible role for this action"
}

func validateBanFromGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.BanFromGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	return validateAdminTargetAction(ctx, d, p.FeedID, p.TargetAddress, signatory, database.RoleBanned,
		[]database.ParticipantRole{database.RoleMember, database.RoleBlocked})
}

func validateUnbanFromGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.UnbanFromGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.adminOnly(ctx, feedID, signatory) {
		return false, "signatory must be an admin"
	}
	target, ok := d.participantState(ctx, feedID, p.TargetAddress)
	if !ok {
		return false, "target has never participated"
	}
	if target.Role != database.RoleBanned {
		return false, "target is not currently banned"
	}
	return true, ""
}

func validateBlockMember(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.BlockMemberPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	return validateAdminTargetAction(ctx, d, p.FeedID, p.TargetAddress, signatory, database.RoleBlocked,
		[]database.ParticipantRole{database.RoleMember})
}

func validateUnblockMember(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.UnblockMemberPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	return validateAdminTargetAction(ctx, d, p.FeedID, p.TargetAddress, signatory, database.RoleMember,
		[]database.ParticipantRole{database.RoleBlocked})
}

func validatePromoteToAdmin(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.PromoteToAdminPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	return validateAdminTargetAction(ctx, d, p.FeedID, p.TargetAddress, signatory, database.RoleAdmin,
		[]database.ParticipantRole{database.RoleMember})
}

func validateDeleteGroupFeed(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.DeleteGroupFeedPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.onlyRemainingAdmin(ctx, feedID, signatory) {
		return false, "signatory must be the only remaining admin"
	}
	return true, ""
}

func validateUpdateGroupFeedTitle(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.UpdateGroupFeedTitlePayload)
	if !ok {
		return false, "payload type mismatch"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.adminOnly(ctx, feedID, signatory) {
		return false, "signatory must be an admin"
	}
	if !d.titleValid(p.Title) {
		return false, "invalid title"
	}
	return true, ""
}

func validateUpdateGroupFeedDescription(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.UpdateGroupFeedDescriptionPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.adminOnly(ctx, feedID, signatory) {
		return false, "signatory must be an admin"
	}
	return true, ""
}

func validateGroupFeedKeyRotation(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.GroupFeedKeyRotationPayload)
	if !ok {
		return false, "payload type mismatch"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	if _, live := d.groupLive(ctx, feedID); !live {
		return false, "group not found or deleted"
	}
	if !d.adminOnly(ctx, feedID, signatory) {
		return false, "signatory must be an admin"
	}
	views := make([]EncryptedKeyView, len(p.EncryptedKeys))
	for i, k := range p.EncryptedKeys {
		views[i] = EncryptedKeyView{MemberAddress: k.MemberAddress, EncryptedAESKey: k.EncryptedAESKey}
	}
	if !keyRotationPayloadWellFormed(p.PreviousGeneration, p.NewGeneration, p.ValidFromBlock, views) {
		return false, "malformed key rotation payload"
	}
	return true, ""
}

func validateNewFeedMessage(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.NewFeedMessagePayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if !authorCommitmentValid(p.AuthorCommitment) {
		return false, "author commitment must be 32 bytes"
	}
	return true, ""
}

func validateNewGroupFeedMessage(ctx context.Context, d *deps, currentBlock uint64, signatory string, payload interface{}) (bool, string) {
	p, ok := payload.(*codec.NewGroupFeedMessagePayload)
	if !ok {
		return false, "payload type mismatch"
	}
	if !authorCommitmentValid(p.AuthorCommitment) {
		return false, "author commitment must be 32 bytes"
	}
	feedID, err := uuid.Parse(p.FeedID)
	if err != nil {
		return false, "invalid feed id"
	}
	feed, live := d.groupLive(ctx, feedID)
	if !live {
		return false, "group not found or deleted"
	}
	if !groupMessageGenerationAccepted(ctx, d, feedID, currentBlock, feed.CurrentKeyGeneration, p.KeyGeneration) {
		return false, "message key generation outside acceptance window"
	}
	return true, ""
}

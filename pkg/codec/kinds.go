// Copyright 2025 Hush Network
//
// Package codec implements the transaction codec registry (spec.md §4.1):
// a startup-fixed mapping from transaction kind to the parser pair that
// decodes its signed and validated wire forms. No registry mutation after
// startup.

package codec

import "github.com/google/uuid"

// Kind is the 128-bit transaction-kind tag (spec.md §6).
type Kind uuid.UUID

func (k Kind) String() string {
	return uuid.UUID(k).String()
}

// kindNamespace anchors the deterministic kind tags below so they are
// stable across builds without hand-maintaining random-looking constants.
var kindNamespace = uuid.MustParse("9b8f8b9e-9a53-4a0b-9e9b-2f1c9a9e6b00")

func kind(name string) Kind {
	return Kind(uuid.NewSHA1(kindNamespace, []byte(name)))
}

// The stable set of transaction kinds (spec.md §6).
var (
	KindNewPersonalFeed         = kind("NewPersonalFeed")
	KindNewChatFeed             = kind("NewChatFeed")
	KindNewGroupFeed            = kind("NewGroupFeed")
	KindNewFeedMessage          = kind("NewFeedMessage")
	KindNewGroupFeedMessage     = kind("NewGroupFeedMessage")
	KindJoinGroupFeed           = kind("JoinGroupFeed")
	KindLeaveGroupFeed          = kind("LeaveGroupFeed")
	KindAddMemberToGroupFeed    = kind("AddMemberToGroupFeed")
	KindBanFromGroupFeed        = kind("BanFromGroupFeed")
	KindUnbanFromGroupFeed      = kind("UnbanFromGroupFeed")
	KindBlockMember             = kind("BlockMember")
	KindUnblockMember           = kind("UnblockMember")
	KindPromoteToAdmin          = kind("PromoteToAdmin")
	KindDeleteGroupFeed         = kind("DeleteGroupFeed")
	KindUpdateGroupFeedTitle    = kind("UpdateGroupFeedTitle")
	KindUpdateGroupFeedDescription = kind("UpdateGroupFeedDescription")
	KindGroupFeedKeyRotation    = kind("GroupFeedKeyRotation")
)

// AllKinds lists every recognized kind, used to build the registry and
// by tests asserting registry completeness.
var AllKinds = []Kind{
	KindNewPersonalFeed,
	KindNewChatFeed,
	KindNewGroupFeed,
	KindNewFeedMessage,
	KindNewGroupFeedMessage,
	KindJoinGroupFeed,
	KindLeaveGroupFeed,
	KindAddMemberToGroupFeed,
	KindBanFromGroupFeed,
	KindUnbanFromGroupFeed,
	KindBlockMember,
	KindUnblockMember,
	KindPromoteToAdmin,
	KindDeleteGroupFeed,
	KindUpdateGroupFeedTitle,
	KindUpdateGroupFeedDescription,
	KindGroupFeedKeyRotation,
}

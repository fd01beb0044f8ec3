// Copyright 2025 Hush Network

package database

import (
	"time"

	"github.com/google/uuid"
)

// FeedType enumerates the three feed shapes (spec.md §3).
type FeedType string

const (
	FeedTypePersonal FeedType = "personal"
	FeedTypeChat     FeedType = "chat"
	FeedTypeGroup    FeedType = "group"
)

// ParticipantRole enumerates feed-participant roles.
type ParticipantRole string

const (
	RoleOwner   ParticipantRole = "owner"
	RoleAdmin   ParticipantRole = "admin"
	RoleMember  ParticipantRole = "member"
	RoleBlocked ParticipantRole = "blocked"
	RoleBanned  ParticipantRole = "banned"
)

// RotationTrigger enumerates the events that can cause a key generation bump.
type RotationTrigger string

const (
	TriggerJoin   RotationTrigger = "join"
	TriggerLeave  RotationTrigger = "leave"
	TriggerBan    RotationTrigger = "ban"
	TriggerUnban  RotationTrigger = "unban"
	TriggerManual RotationTrigger = "manual"
)

// Feed is the common row shape for personal, chat and group feeds.
type Feed struct {
	FeedID             uuid.UUID
	Title              string
	Type               FeedType
	CreatedAtBlock     uint64
	LastUpdatedAtBlock uint64

	// Group-only fields, zero-valued for personal/chat feeds.
	IsPublic             bool
	Description          string
	IsDeleted            bool
	CurrentKeyGeneration int64
}

// FeedParticipant is a single membership row.
type FeedParticipant struct {
	ID                 int64
	FeedID             uuid.UUID
	Address            string
	Role               ParticipantRole
	EncryptedFeedKey   []byte
	JoinedAtBlock      uint64
	LeftAtBlock        *uint64
	LastLeaveBlock     *uint64
}

// IsActive reports whether the participant currently holds a live seat
// (has not left the feed).
func (p *FeedParticipant) IsActive() bool {
	return p.LeftAtBlock == nil
}

// KeyGeneration is one epoch of a group's symmetric encryption key.
type KeyGeneration struct {
	ID             int64
	FeedID         uuid.UUID
	Generation     int64
	ValidFromBlock uint64
	ValidToBlock   *uint64
	Trigger        RotationTrigger
}

// EncryptedMemberKey wraps the generation's symmetric key for one member.
type EncryptedMemberKey struct {
	ID              int64
	KeyGenerationID int64
	MemberAddress   string
	EncryptedAESKey []byte
}

// FeedMessage is a single ciphertext message posted to a feed.
type FeedMessage struct {
	MessageID         uuid.UUID
	FeedID            uuid.UUID
	Ciphertext        []byte
	IssuerAddress     string
	Timestamp         time.Time
	BlockIndex        uint64
	ReplyTo           *uuid.UUID
	AuthorCommitment  []byte
	KeyGeneration     *int64
}

// ReadPosition is a user's last-read watermark for a feed.
type ReadPosition struct {
	UserAddress   string
	FeedID        uuid.UUID
	LastReadBlock uint64
}

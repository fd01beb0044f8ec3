// Copyright 2025 Hush Network

package codec

// Payload types are kind-specific and structurally stable (spec.md §6).
// Field names mirror the handler and validator vocabulary in spec.md §4.

// NewPersonalFeedPayload creates the caller's personal feed.
type NewPersonalFeedPayload struct {
	FeedID           string `json:"feed_id"`
	OwnerAddress     string `json:"owner_address"`
	WrappedFeedKey   []byte `json:"wrapped_feed_key"`
}

// NewChatFeedPayload creates a 2-party direct-message feed.
type NewChatFeedPayload struct {
	FeedID       string   `json:"feed_id"`
	Participants []string `json:"participants"`
}

// NewGroupFeedPayload creates a group with an initial membership list.
type NewGroupFeedPayload struct {
	FeedID          string             `json:"feed_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	IsPublic        bool               `json:"is_public"`
	CreatorAddress  string             `json:"creator_address"`
	Participants    []string           `json:"participants"`
	EncryptedKeys   []EncryptedKeyPair `json:"encrypted_keys"`
}

// EncryptedKeyPair is one member's wrapped symmetric key, supplied
// in-payload for the feed's initial key generation.
type EncryptedKeyPair struct {
	MemberAddress   string `json:"member_address"`
	EncryptedAESKey []byte `json:"encrypted_aes_key"`
}

// NewFeedMessagePayload posts a message to a personal or chat feed.
type NewFeedMessagePayload struct {
	MessageID        string  `json:"message_id"`
	FeedID           string  `json:"feed_id"`
	Ciphertext       []byte  `json:"ciphertext"`
	IssuerAddress    string  `json:"issuer_address"`
	ReplyTo          *string `json:"reply_to,omitempty"`
	AuthorCommitment []byte  `json:"author_commitment,omitempty"`
}

// NewGroupFeedMessagePayload posts a message to a group feed, naming the
// key generation it was encrypted under.
type NewGroupFeedMessagePayload struct {
	MessageID        string  `json:"message_id"`
	FeedID           string  `json:"feed_id"`
	Ciphertext       []byte  `json:"ciphertext"`
	IssuerAddress    string  `json:"issuer_address"`
	KeyGeneration    int64   `json:"key_generation"`
	ReplyTo          *string `json:"reply_to,omitempty"`
	AuthorCommitment []byte  `json:"author_commitment,omitempty"`
}

// JoinGroupFeedPayload requests self-admission to a group.
type JoinGroupFeedPayload struct {
	FeedID          string `json:"feed_id"`
	SubjectAddress  string `json:"subject_address"`
	InvitationToken []byte `json:"invitation_token,omitempty"`
}

// LeaveGroupFeedPayload requests self-removal from a group.
type LeaveGroupFeedPayload struct {
	FeedID         string `json:"feed_id"`
	SubjectAddress string `json:"subject_address"`
}

// AddMemberToGroupFeedPayload is an admin-issued invitation.
type AddMemberToGroupFeedPayload struct {
	FeedID                  string `json:"feed_id"`
	NewMemberAddress        string `json:"new_member_address"`
	NewMemberPublicEncryptKey []byte `json:"new_member_public_encrypt_key"`
}

// BanFromGroupFeedPayload removes and blacklists a member.
type BanFromGroupFeedPayload struct {
	FeedID        string `json:"feed_id"`
	TargetAddress string `json:"target_address"`
}

// UnbanFromGroupFeedPayload restores a previously banned member to Member.
type UnbanFromGroupFeedPayload struct {
	FeedID        string `json:"feed_id"`
	TargetAddress string `json:"target_address"`
}

// BlockMemberPayload mutes a member's send authorization.
type BlockMemberPayload struct {
	FeedID        string `json:"feed_id"`
	TargetAddress string `json:"target_address"`
}

// UnblockMemberPayload restores a blocked member's send authorization.
type UnblockMemberPayload struct {
	FeedID        string `json:"feed_id"`
	TargetAddress string `json:"target_address"`
}

// PromoteToAdminPayload elevates a member to Admin.
type PromoteToAdminPayload struct {
	FeedID        string `json:"feed_id"`
	TargetAddress string `json:"target_address"`
}

// DeleteGroupFeedPayload soft-deletes a group.
type DeleteGroupFeedPayload struct {
	FeedID string `json:"feed_id"`
}

// UpdateGroupFeedTitlePayload renames a group.
type UpdateGroupFeedTitlePayload struct {
	FeedID string `json:"feed_id"`
	Title  string `json:"title"`
}

// UpdateGroupFeedDescriptionPayload updates a group's description.
type UpdateGroupFeedDescriptionPayload struct {
	FeedID      string `json:"feed_id"`
	Description string `json:"description"`
}

// GroupFeedKeyRotationPayload is an explicit, pre-computed rotation
// (spec.md §4.3 "Atomic persistence variant" submitted directly).
type GroupFeedKeyRotationPayload struct {
	FeedID             string             `json:"feed_id"`
	NewGeneration      int64              `json:"new_generation"`
	PreviousGeneration int64              `json:"previous_generation"`
	ValidFromBlock     uint64             `json:"valid_from_block"`
	EncryptedKeys      []EncryptedKeyPair `json:"encrypted_keys"`
}

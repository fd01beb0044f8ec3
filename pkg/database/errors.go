// Copyright 2025 Hush Network
//
// Package database provides sentinel errors for repository operations,
// so callers can branch on "not found" instead of string-matching errors.

package database

import "errors"

// Sentinel errors for database operations.
var (
	// ErrFeedNotFound is returned when a feed is not found.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrGroupNotFound is returned when a group feed is not found.
	ErrGroupNotFound = errors.New("group feed not found")

	// ErrParticipantNotFound is returned when a participant row is not found.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrKeyGenerationNotFound is returned when a key generation is not found.
	ErrKeyGenerationNotFound = errors.New("key generation not found")

	// ErrMessageNotFound is returned when a message is not found.
	ErrMessageNotFound = errors.New("message not found")

	// ErrAlreadyExists signals a conditional-insert collision; callers that
	// use conditional-insert treat this as a no-op, never surface it.
	ErrAlreadyExists = errors.New("entity already exists")
)

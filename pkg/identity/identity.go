// Copyright 2025 Hush Network
//
// Package identity provides the IdentityDirectory collaborator interface
// (spec.md §6) that the key rotation engine and metadata cache depend on
// to resolve addresses to public encryption keys and display names.

package identity

import (
	"context"
	"errors"
	"sync"
)

// ErrProfileNotFound is returned when an address has no known profile.
var ErrProfileNotFound = errors.New("identity: profile not found")

// Profile is what the directory knows about an address.
type Profile struct {
	PublicEncryptAddress []byte
	Alias                string
}

// Directory resolves addresses to profiles. Implementations may hit a
// remote identity service; callers must apply their own timeout via ctx.
type Directory interface {
	Lookup(ctx context.Context, address string) (*Profile, error)
}

// StaticDirectory is an in-memory Directory, useful for tests and for
// bootstrapping a node before a real identity service is wired in.
type StaticDirectory struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewStaticDirectory creates an empty static directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{profiles: make(map[string]*Profile)}
}

// Lookup implements Directory.
func (d *StaticDirectory) Lookup(ctx context.Context, address string) (*Profile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.profiles[address]
	if !ok || len(p.PublicEncryptAddress) == 0 {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// Set registers or updates a profile, as would happen on an identity update.
func (d *StaticDirectory) Set(address string, profile *Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[address] = profile
}

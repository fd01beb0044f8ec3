// Copyright 2025 Hush Network
//
// Package clock provides the BlockchainClock collaborator interface
// (spec.md §6): the single source of truth for "what block are we at"
// that handlers and the key rotation engine read from, decoupling them
// from any shared mutable current-block state (spec.md §9 redesign).

package clock

import "sync/atomic"

// BlockchainClock reports the last indexed block.
type BlockchainClock interface {
	LastBlockIndex() uint64
}

// AtomicClock is a BlockchainClock backed by an atomic counter, advanced
// by the indexing worker as it processes each block.
type AtomicClock struct {
	block atomic.Uint64
}

// NewAtomicClock creates a clock starting at block 0.
func NewAtomicClock() *AtomicClock {
	return &AtomicClock{}
}

// LastBlockIndex implements BlockchainClock.
func (c *AtomicClock) LastBlockIndex() uint64 {
	return c.block.Load()
}

// Advance sets the current block index, called once per processed block.
// A no-op if block does not exceed the current value, since the index is
// monotonic by construction.
func (c *AtomicClock) Advance(block uint64) {
	for {
		current := c.block.Load()
		if block <= current {
			return
		}
		if c.block.CompareAndSwap(current, block) {
			return
		}
	}
}

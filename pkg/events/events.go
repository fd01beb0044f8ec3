// Copyright 2025 Hush Network
//
// Package events publishes best-effort, fire-and-forget notifications
// about feed activity (user joined, message posted, key rotated). No
// handler blocks on a publish failure; the bus only ever logs.

package events

import (
	"context"
	"log"
	"os"
	"time"
)

// Event is a single fire-and-forget notification.
type Event struct {
	Kind      string                 `json:"kind"`
	FeedID    string                 `json:"feed_id"`
	Actor     string                 `json:"actor,omitempty"`
	Block     uint64                 `json:"block"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Bus publishes events without blocking the caller's transaction path.
type Bus interface {
	Publish(ctx context.Context, ev Event)
}

// LogBus publishes events to a standard logger. Used when no external
// sink is configured (spec.md §5 "fire-and-forget, best-effort").
type LogBus struct {
	logger *log.Logger
}

// NewLogBus creates a log-backed event bus.
func NewLogBus() *LogBus {
	return &LogBus{logger: log.New(os.Stdout, "[events] ", log.LstdFlags)}
}

// Publish logs the event. Never returns an error: callers that care about
// delivery should use a durable bus instead.
func (b *LogBus) Publish(_ context.Context, ev Event) {
	b.logger.Printf("kind=%s feed=%s actor=%s block=%d", ev.Kind, ev.FeedID, ev.Actor, ev.Block)
}

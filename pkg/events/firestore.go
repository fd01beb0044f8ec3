// Copyright 2025 Hush Network

package events

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	gcpfirestore "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirestoreConfig configures the Firestore-backed event bus.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	Enabled         bool
	Logger          *log.Logger
}

// DefaultFirestoreConfig reads configuration from the environment.
func DefaultFirestoreConfig() *FirestoreConfig {
	return &FirestoreConfig{
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Enabled:         os.Getenv("FIRESTORE_EVENTS_ENABLED") == "true",
		Logger:          log.New(os.Stdout, "[events:firestore] ", log.LstdFlags),
	}
}

// FirestoreBus mirrors activity events into a Firestore collection for
// downstream real-time sync (spec.md §4.6 "client sync surfaces"). When
// disabled it behaves as a no-op, matching the pattern used for every
// other optional external dependency in this node.
type FirestoreBus struct {
	mu        sync.RWMutex
	app       *firebase.App
	firestore *gcpfirestore.Client
	enabled   bool
	logger    *log.Logger
}

// NewFirestoreBus creates a Firestore-backed event bus. If cfg.Enabled is
// false, it returns immediately with a disabled, always-no-op bus.
func NewFirestoreBus(ctx context.Context, cfg *FirestoreConfig) (*FirestoreBus, error) {
	if cfg == nil {
		cfg = DefaultFirestoreConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "[events:firestore] ", log.LstdFlags)
	}

	bus := &FirestoreBus{enabled: cfg.Enabled, logger: cfg.Logger}
	if !cfg.Enabled {
		cfg.Logger.Println("firestore event sync is disabled - running in no-op mode")
		return bus, nil
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required when firestore event sync is enabled")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	bus.app = app
	bus.firestore = client
	return bus, nil
}

// IsEnabled reports whether the bus actually writes to Firestore.
func (b *FirestoreBus) IsEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// Publish writes the event under feedActivity/{feedID}/events/{auto-id}.
// Errors are logged, never surfaced — publish is fire-and-forget by
// construction (spec.md §5).
func (b *FirestoreBus) Publish(ctx context.Context, ev Event) {
	if !b.IsEnabled() {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	collPath := fmt.Sprintf("feedActivity/%s/events", ev.FeedID)
	_, _, err := b.firestore.Collection(collPath).Add(ctx, map[string]interface{}{
		"kind":      ev.Kind,
		"actor":     ev.Actor,
		"block":     ev.Block,
		"timestamp": ev.Timestamp,
		"data":      ev.Data,
	})
	if err != nil {
		b.logger.Printf("failed to publish event kind=%s feed=%s: %v", ev.Kind, ev.FeedID, err)
	}
}

// Close releases the underlying Firestore client.
func (b *FirestoreBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.firestore != nil {
		return b.firestore.Close()
	}
	return nil
}

// Copyright 2025 Hush Network

package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, existed := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if existed {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t, "DATABASE_URL", "API_HOST", "API_PORT", "MAX_TITLE_LENGTH",
		"REJOIN_COOLDOWN_BLOCKS", "RECENT_MESSAGES_CACHE_CAP", "FIRESTORE_ENABLED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MaxTitleLength != 100 {
		t.Errorf("MaxTitleLength = %d, want 100", cfg.MaxTitleLength)
	}
	if cfg.RejoinCooldownBlocks != 100 {
		t.Errorf("RejoinCooldownBlocks = %d, want 100", cfg.RejoinCooldownBlocks)
	}
	if cfg.MaxMembersPerRotation != 512 {
		t.Errorf("MaxMembersPerRotation = %d, want 512", cfg.MaxMembersPerRotation)
	}
	if cfg.ListenAddr != "0.0.0.0:8080" {
		t.Errorf("ListenAddr = %q, want 0.0.0.0:8080", cfg.ListenAddr)
	}
	if cfg.ReadWatermarkTTL != 30*24*time.Hour {
		t.Errorf("ReadWatermarkTTL = %v, want 30 days", cfg.ReadWatermarkTTL)
	}
	if cfg.FirestoreEnabled {
		t.Error("FirestoreEnabled default should be false")
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	clearEnv(t, "DATABASE_URL", "MAX_TITLE_LENGTH", "API_PORT")
	os.Setenv("DATABASE_URL", "postgres://localhost/feeds")
	os.Setenv("MAX_TITLE_LENGTH", "50")
	os.Setenv("API_PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/feeds" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.MaxTitleLength != 50 {
		t.Errorf("MaxTitleLength = %d, want 50", cfg.MaxTitleLength)
	}
	if cfg.ListenAddr != "0.0.0.0:9999" {
		t.Errorf("ListenAddr = %q, want port override reflected", cfg.ListenAddr)
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := &Config{MaxMembersPerRotation: 512, MaxTitleLength: 100}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate() to fail without DATABASE_URL")
	}
}

func TestValidateRequiresFirebaseProjectIDWhenFirestoreEnabled(t *testing.T) {
	cfg := &Config{
		DatabaseURL:           "postgres://localhost/feeds",
		MaxMembersPerRotation: 512,
		MaxTitleLength:        100,
		FirestoreEnabled:      true,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate() to fail when Firestore is enabled without a project ID")
	}
}

func TestValidatePasses(t *testing.T) {
	cfg := &Config{
		DatabaseURL:           "postgres://localhost/feeds",
		MaxMembersPerRotation: 512,
		MaxTitleLength:        100,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidateForDevelopmentOnlyRequiresDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/feeds"}
	if err := cfg.ValidateForDevelopment(); err != nil {
		t.Fatalf("ValidateForDevelopment() error = %v, want nil", err)
	}

	cfg.DatabaseURL = ""
	if err := cfg.ValidateForDevelopment(); err == nil {
		t.Fatal("expected ValidateForDevelopment() to fail without DATABASE_URL")
	}
}

// Copyright 2025 Hush Network

package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/ecies"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hushnetwork-social/hush-server-node/pkg/cache"
	"github.com/hushnetwork-social/hush-server-node/pkg/clock"
	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/config"
	"github.com/hushnetwork-social/hush-server-node/pkg/crypto/groupkey"
	"github.com/hushnetwork-social/hush-server-node/pkg/database"
	"github.com/hushnetwork-social/hush-server-node/pkg/dispatch"
	"github.com/hushnetwork-social/hush-server-node/pkg/events"
	"github.com/hushnetwork-social/hush-server-node/pkg/feeds"
	"github.com/hushnetwork-social/hush-server-node/pkg/handlers"
	"github.com/hushnetwork-social/hush-server-node/pkg/identity"
	"github.com/hushnetwork-social/hush-server-node/pkg/initworkflow"
	"github.com/hushnetwork-social/hush-server-node/pkg/mempool"
	"github.com/hushnetwork-social/hush-server-node/pkg/metrics"
	"github.com/hushnetwork-social/hush-server-node/pkg/sig"
	"github.com/hushnetwork-social/hush-server-node/pkg/validate"
)

// HealthStatus tracks the health of the node's components for the
// /health endpoint, following the teacher's explicit-degradation shape.
type HealthStatus struct {
	Status    string `json:"status"` // "ok", "degraded", "error"
	Database  string `json:"database"`
	Firestore string `json:"firestore"`
	Mempool   string `json:"mempool"`

	UptimeSeconds int64 `json:"uptime_seconds"`

	startTime time.Time
	mu        sync.RWMutex
}

func newHealthStatus() *HealthStatus {
	return &HealthStatus{
		Status:    "starting",
		Database:  "unknown",
		Firestore: "unknown",
		Mempool:   "unknown",
		startTime: time.Now(),
	}
}

func (h *HealthStatus) SetDatabase(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Database = status
	h.updateOverallStatus()
}

func (h *HealthStatus) SetFirestore(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Firestore = status
	h.updateOverallStatus()
}

func (h *HealthStatus) SetMempool(status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Mempool = status
	h.updateOverallStatus()
}

// updateOverallStatus assumes the caller already holds h.mu.
func (h *HealthStatus) updateOverallStatus() {
	if h.Database == "disconnected" || h.Mempool == "disconnected" {
		h.Status = "error"
		return
	}
	if h.Firestore == "disabled" {
		h.Status = "degraded"
		return
	}
	h.Status = "ok"
}

func (h *HealthStatus) ToJSON() []byte {
	h.mu.Lock()
	h.UptimeSeconds = int64(time.Since(h.startTime).Seconds())
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	data, _ := json.Marshal(h)
	return data
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var showHelp = flag.Bool("help", false, "Show help message")
	flag.Parse()
	if *showHelp {
		fmt.Println("feeds-node indexes and serves the feeds subsystem: personal, chat and group feeds.")
		flag.PrintDefaults()
		return
	}

	log.Println("starting feeds-node")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	health := newHealthStatus()

	log.Println("connecting to database...")
	dbClient, err := database.NewClient(cfg, database.WithLogger(
		log.New(log.Writer(), "[database] ", log.LstdFlags),
	))
	if err != nil {
		log.Fatalf("database connection required but failed: %v", err)
	}
	health.SetDatabase("connected")

	if err := dbClient.MigrateUp(context.Background()); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	defer dbClient.Close()

	var bus events.Bus
	if cfg.FirestoreEnabled {
		log.Println("initializing Firestore event bus...")
		firestoreCfg := &events.FirestoreConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			Enabled:         true,
			Logger:          log.New(log.Writer(), "[firestore] ", log.LstdFlags),
		}
		firestoreBus, ferr := events.NewFirestoreBus(context.Background(), firestoreCfg)
		if ferr != nil {
			log.Printf("firestore event bus unavailable, falling back to log bus: %v", ferr)
			bus = events.NewLogBus()
			health.SetFirestore("disabled")
		} else {
			bus = firestoreBus
			health.SetFirestore("connected")
		}
	} else {
		log.Println("firestore event mirroring disabled, using log bus")
		bus = events.NewLogBus()
		health.SetFirestore("disabled")
	}

	reg := prometheus.NewRegistry()
	metricsInstance := metrics.New(reg)

	validatorKey, err := resolveOrGenerateKey(cfg.ValidatorPrivateKeyHex, "validator")
	if err != nil {
		log.Fatalf("failed to establish validator signing key: %v", err)
	}
	log.Printf("validator address: %s", sig.AddressOf(validatorKey))

	operatorKey, err := resolveOrGenerateKey(cfg.OperatorPrivateKeyHex, "operator")
	if err != nil {
		log.Fatalf("failed to establish operator identity key: %v", err)
	}
	operatorAddress := string(sig.AddressOf(operatorKey))

	dir := identity.NewStaticDirectory()
	dir.Set(operatorAddress, &identity.Profile{
		PublicEncryptAddress: crypto.FromECDSAPub(&operatorKey.PublicKey),
		Alias:                "operator",
	})

	store := feeds.NewStore(dbClient)
	rotator := groupkey.NewEngine(dir, store.KeyGenerations(), store.Feeds())

	caches := &handlers.Caches{
		FeedList:      cache.NewFeedListCache(cfg.UserFeedListTTL),
		Participants:  cache.NewParticipantsCache(),
		RecentMsgs:    cache.NewRecentMessagesCache(4096, cfg.RecentMessagesCap),
		KeyGenDoc:     cache.NewKeyGenerationCache(),
		Metadata:      cache.NewMetadataCache(),
		DisplayNames:  cache.NewDisplayNameCache(),
		ReadWatermark: cache.NewReadWatermarkCache(cfg.ReadWatermarkTTL),
	}

	codecRegistry := codec.NewRegistry()

	handlerRegistry := handlers.NewRegistry()
	env := &handlers.Env{
		Store:   store,
		Rotator:   rotator,
		Caches:    caches,
		Bus:       bus,
		Metrics:   metricsInstance,
		Logger:    log.New(log.Writer(), "[handlers] ", log.LstdFlags),
		Directory: dir,
	}

	bchainClock := clock.NewAtomicClock()
	bchainClock.Advance(1)

	dispatcher := dispatch.New(handlerRegistry, env, bchainClock, metricsInstance, log.New(log.Writer(), "[dispatch] ", log.LstdFlags))
	inbox := make(chan *codec.ValidatedTransaction, 256)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := dispatcher.Run(ctx, inbox); err != nil && err != context.Canceled {
			log.Printf("dispatcher stopped: %v", err)
		}
	}()

	queuedMempool := mempool.NewQueuedMempool(cfg.MempoolQueueCapacity)
	health.SetMempool("connected")

	// With no consensus layer in scope, this node validates and applies its
	// own mempool locally instead of waiting on chain-sourced transactions.
	validatorRegistry := validate.NewRegistry(codecRegistry, validatorKey, cfg)
	wg.Add(1)
	go func() {
		defer wg.Done()
		runLocalMempoolBridge(ctx, queuedMempool, validatorRegistry, store, bchainClock, inbox)
	}()

	wrappedKey, err := wrapOwnKey(operatorKey)
	if err != nil {
		log.Fatalf("failed to wrap operator personal feed key: %v", err)
	}

	result, err := initworkflow.Run(ctx, initworkflow.Deps{
		Store:   store,
		Mempool: queuedMempool,
		Bus:     bus,
		Codec:   codecRegistry,
		Logger:  log.New(log.Writer(), "[initworkflow] ", log.LstdFlags),
	}, operatorAddress, operatorKey, wrappedKey)
	if err != nil {
		log.Fatalf("init workflow failed: %v", err)
	}
	if result.AlreadyPresent {
		log.Printf("operator personal feed already exists: %s", result.FeedID)
	} else {
		log.Printf("submitted operator personal feed creation: %s", result.FeedID)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "error" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		w.Write(health.ToJSON())
	})
	mux.HandleFunc("/health/detailed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(health.ToJSON())
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	go func() {
		log.Printf("health server listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("health server error: %v", err)
		}
	}()
	go func() {
		log.Printf("metrics server listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down feeds-node")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)

	cancel()
	close(inbox)
	wg.Wait()
}

// runLocalMempoolBridge drains queuedMempool on a short interval, runs each
// raw transaction through content validation and, on acceptance, hands it
// to the dispatcher. This stands in for the chain-ingestion path that is
// out of scope here (spec.md §1 Non-goals): a single node acting as both
// its own validator and indexer still needs its submitted transactions to
// reach the store.
func runLocalMempoolBridge(ctx context.Context, pool *mempool.QueuedMempool, registry *validate.Registry, store *feeds.Store, bchainClock *clock.AtomicClock, inbox chan<- *codec.ValidatedTransaction) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, raw := range pool.Drain() {
				currentBlock := bchainClock.LastBlockIndex()
				verdict, err := registry.Validate(ctx, store.DB(), currentBlock, raw)
				if err != nil {
					log.Printf("validation error: %v", err)
					continue
				}
				if !verdict.Accepted() {
					log.Printf("rejected transaction: %s", verdict.RejectReason)
					continue
				}
				select {
				case inbox <- verdict.Transaction:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// resolveOrGenerateKey parses hexKey if non-empty, otherwise generates an
// ephemeral key for local development and logs a warning, mirroring the
// teacher's CLI-flag-over-env precedence without requiring operators to
// mint a key before their first run.
func resolveOrGenerateKey(hexKey, role string) (*ecdsa.PrivateKey, error) {
	if hexKey != "" {
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid %s private key: %w", role, err)
		}
		return key, nil
	}
	log.Printf("no %s private key configured, generating an ephemeral one for this run", role)
	return sig.GenerateKey()
}

// wrapOwnKey generates a fresh AES-256 key and ECIES-wraps it to its own
// owner, the shape a personal feed's encrypted_feed_key takes (spec.md §3
// "Personal" kind, single Owner participant).
func wrapOwnKey(key *ecdsa.PrivateKey) ([]byte, error) {
	symmetricKey := make([]byte, 32)
	if _, err := rand.Read(symmetricKey); err != nil {
		return nil, fmt.Errorf("failed to generate symmetric key: %w", err)
	}
	ciphertext, err := ecies.Encrypt(rand.Reader, ecies.ImportECDSAPublic(&key.PublicKey), symmetricKey, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap symmetric key: %w", err)
	}
	return ciphertext, nil
}

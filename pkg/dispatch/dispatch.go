// Copyright 2025 Hush Network
//
// Package dispatch runs the single logical indexing worker (spec.md §5,
// component F): one goroutine draining a FIFO channel of validated
// transactions and routing each to its unique handler. There is no
// pool of concurrent workers — ordering within a feed (and across feeds
// that share a key generation) depends on transactions being applied in
// arrival order, so the dispatcher is deliberately single-threaded.

package dispatch

import (
	"context"
	"fmt"
	"log"

	"github.com/hushnetwork-social/hush-server-node/pkg/clock"
	"github.com/hushnetwork-social/hush-server-node/pkg/codec"
	"github.com/hushnetwork-social/hush-server-node/pkg/handlers"
	"github.com/hushnetwork-social/hush-server-node/pkg/metrics"
)

// Dispatcher routes validated transactions to their handler in arrival order.
type Dispatcher struct {
	registry *handlers.Registry
	env      *handlers.Env
	clock    clock.BlockchainClock
	metrics  *metrics.Metrics
	logger   *log.Logger
}

// New creates a dispatcher bound to a handler registry, environment and clock.
func New(registry *handlers.Registry, env *handlers.Env, bchain clock.BlockchainClock, m *metrics.Metrics, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[dispatch] ", log.LstdFlags)
	}
	return &Dispatcher{registry: registry, env: env, clock: bchain, metrics: m, logger: logger}
}

// UnknownKindError is returned (and logged as fatal) when a validated
// transaction names a kind with no registered handler — this can only
// happen if the codec and handler registries have drifted apart, which
// is an indexing bug, not a runtime condition to route around.
type UnknownKindError struct {
	Kind codec.Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("dispatch: no handler registered for kind %s", e.Kind)
}

// Run drains inbox until it closes or ctx is cancelled, applying each
// transaction through its handler at the clock's current block. It
// returns on the first unknown-kind transaction or the first ctx
// cancellation; handler errors are logged and do not halt the worker,
// since a single malformed or conflicting transaction should not stop
// the indexer from processing the rest of the chain.
func (d *Dispatcher) Run(ctx context.Context, inbox <-chan *codec.ValidatedTransaction) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tx, ok := <-inbox:
			if !ok {
				return nil
			}
			if err := d.dispatch(ctx, tx); err != nil {
				if _, fatal := err.(*UnknownKindError); fatal {
					d.logger.Printf("FATAL: %v", err)
					return err
				}
				d.logger.Printf("handler error kind=%s: %v", tx.Kind, err)
				if d.metrics != nil {
					d.metrics.HandlerErrors.WithLabelValues(tx.Kind.String()).Inc()
				}
			}
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, tx *codec.ValidatedTransaction) error {
	handler, ok := d.registry.Lookup(tx.Kind)
	if !ok {
		return &UnknownKindError{Kind: tx.Kind}
	}

	currentBlock := d.clock.LastBlockIndex()

	var timer *metricsTimer
	if d.metrics != nil {
		timer = startTimer(d.metrics, tx.Kind.String())
	}
	err := handler(ctx, d.env, tx, currentBlock)
	if timer != nil {
		timer.observe()
	}
	if d.metrics != nil {
		d.metrics.DispatchedTotal.Inc()
	}
	return err
}

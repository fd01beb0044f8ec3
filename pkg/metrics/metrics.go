// Copyright 2025 Hush Network
//
// Package metrics exposes Prometheus instrumentation for the dispatcher,
// handlers and caches (spec.md §6 observability additions).

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every counter, histogram and gauge the node records.
type Metrics struct {
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	HandlerDuration *prometheus.HistogramVec
	HandlerErrors   *prometheus.CounterVec

	TransactionsValidated *prometheus.CounterVec
	TransactionsRejected  *prometheus.CounterVec

	CurrentKeyGeneration *prometheus.GaugeVec
	MempoolQueueDepth    prometheus.Gauge
	DispatchedTotal      prometheus.Counter
}

// New registers every metric against reg and returns the bundle. Callers
// pass prometheus.NewRegistry() in tests to avoid collisions with the
// global default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_cache_hits_total",
			Help: "Cache hits by cache name.",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_cache_misses_total",
			Help: "Cache misses by cache name.",
		}, []string{"cache"}),
		HandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feeds_handler_duration_seconds",
			Help:    "Handler execution latency by transaction kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		HandlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_handler_errors_total",
			Help: "Handler failures by transaction kind.",
		}, []string{"kind"}),
		TransactionsValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_transactions_validated_total",
			Help: "Transactions accepted by content validation, by kind.",
		}, []string{"kind"}),
		TransactionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feeds_transactions_rejected_total",
			Help: "Transactions rejected by content validation, by kind.",
		}, []string{"kind"}),
		CurrentKeyGeneration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feeds_group_key_generation",
			Help: "Current key generation per group feed.",
		}, []string{"feed_id"}),
		MempoolQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feeds_mempool_queue_depth",
			Help: "Number of validated transactions queued for submission.",
		}),
		DispatchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feeds_dispatched_total",
			Help: "Total transactions routed through the dispatcher.",
		}),
	}

	reg.MustRegister(
		m.CacheHits, m.CacheMisses,
		m.HandlerDuration, m.HandlerErrors,
		m.TransactionsValidated, m.TransactionsRejected,
		m.CurrentKeyGeneration, m.MempoolQueueDepth, m.DispatchedTotal,
	)
	return m
}

// Copyright 2025 Hush Network

package dispatch

import (
	"time"

	"github.com/hushnetwork-social/hush-server-node/pkg/metrics"
)

type metricsTimer struct {
	m        *metrics.Metrics
	kind     string
	started  time.Time
}

func startTimer(m *metrics.Metrics, kind string) *metricsTimer {
	return &metricsTimer{m: m, kind: kind, started: time.Now()}
}

func (t *metricsTimer) observe() {
	t.m.HandlerDuration.WithLabelValues(t.kind).Observe(time.Since(t.started).Seconds())
}

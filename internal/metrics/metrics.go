// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics exposes the sync counters of the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "billkeeper"

// Outcome labels.
const (
	OutcomeApplied  = "applied"
	OutcomeConflict = "conflict"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Recorder receives reconciler events.
type Recorder interface {
	ObserveSync(mode, outcome string, took time.Duration)
	AddConflicts(entity, resolution string, n int)
	IncConcurrencyFaults()
}

// Nop drops every observation.
type Nop struct{}

func (Nop) ObserveSync(string, string, time.Duration) {}
func (Nop) AddConflicts(string, string, int)          {}
func (Nop) IncConcurrencyFaults()                     {}

// Metrics is a Recorder backed by a private prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	syncRequests *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	conflicts    *prometheus.CounterVec
	faults       prometheus.Counter
}

// New registers the sync metrics together with the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_requests_total",
			Help:      "Sync requests handled, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Time spent reconciling a sync request.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_conflicts_total",
			Help:      "Conflict entries reported to clients.",
		}, []string{"entity", "resolution"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_concurrency_faults_total",
			Help:      "Transactions answered as conflicts after a concurrency fault.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.syncRequests,
		m.syncDuration,
		m.conflicts,
		m.faults,
	)
	return m
}

func (m *Metrics) ObserveSync(mode, outcome string, took time.Duration) {
	m.syncRequests.WithLabelValues(mode, outcome).Inc()
	m.syncDuration.WithLabelValues(mode).Observe(took.Seconds())
}

func (m *Metrics) AddConflicts(entity, resolution string, n int) {
	if n <= 0 {
		return
	}
	m.conflicts.WithLabelValues(entity, resolution).Add(float64(n))
}

func (m *Metrics) IncConcurrencyFaults() {
	m.faults.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package observability exposes Prometheus metrics for the history storage layer.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat_memory"

// Label values
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	SourceCache   = "cache"
	SourceDurable = "durable"
	SourceMerged  = "merged"

	PersistOK      = "ok"
	PersistRetried = "retried"
	PersistDropped = "dropped"
	PersistEvicted = "evicted"
)

type Metrics struct {
	CacheLookups      *prometheus.CounterVec
	HistoryLoads      *prometheus.CounterVec
	PersistResults    *prometheus.CounterVec
	PersistQueueDepth prometheus.Gauge
	PersistDuration   prometheus.Histogram
	JanitorRuns       *prometheus.CounterVec
}

// NewMetrics registers every collector on reg. Tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache message lookups by result",
		}, []string{"result"}),
		HistoryLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_loads_total",
			Help:      "History loads by serving tier",
		}, []string{"source"}),
		PersistResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_results_total",
			Help:      "Outcome of asynchronous durable writes",
		}, []string{"result"}),
		PersistQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "persist_queue_depth",
			Help:      "Messages waiting for the durable store",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_duration_seconds",
			Help:      "Time spent appending one message, retries included",
			Buckets:   prometheus.DefBuckets,
		}),
		JanitorRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "janitor_runs_total",
			Help:      "Maintenance job runs by job and status",
		}, []string{"job", "status"}),
	}
}

// NewNopMetrics registers on a throwaway registry.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "balance_chart"

// Fetch outcomes recorded in FetchesTotal.
const (
	OutcomeCommitted = "committed"
	OutcomeEmpty     = "empty"
	OutcomeStale     = "stale"
	OutcomeFailed    = "failed"
)

var (
	// FetchesTotal counts finished fetches by network and outcome.
	FetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Balance fetches by network and outcome (committed, empty, stale, failed).",
	}, []string{"network", "outcome"})

	// FetchDuration observes the time spent waiting for the GraphQL API.
	FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Latency of balance queries against the GraphQL endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network"})

	// UpstreamResponses counts HTTP status codes returned by the GraphQL endpoint.
	UpstreamResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_responses_total",
		Help:      "HTTP responses from the GraphQL endpoint by status code.",
	}, []string{"code"})

	// ActiveSessions reports widget API sessions currently held in memory.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Widget API sessions currently held in memory.",
	})

	// CacheEntries reports committed (address, network) entries across all live caches.
	CacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Committed balance cache entries across all sessions.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(FetchesTotal, FetchDuration, UpstreamResponses, ActiveSessions, CacheEntries)
	})
}

// Package metrics defines Prometheus metrics for batchmates.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batchmates_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchmates_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchmates_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batchmates_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batchmates_sessions_active",
			Help: "Exploration sessions currently held in memory",
		},
	)

	ExpansionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchmates_expansions_total",
			Help: "Node expansions by node kind and result",
		},
		[]string{"kind", "result"},
	)

	NeighborLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "batchmates_neighbor_lookup_duration_seconds",
			Help:    "Neighbor lookup latency against the database",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	NeighborCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batchmates_neighbor_cache_hits_total",
			Help: "Neighbor lookups served from cache",
		},
	)

	NeighborCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batchmates_neighbor_cache_misses_total",
			Help: "Neighbor lookups that reached the database",
		},
	)

	ProfilesLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batchmates_profiles_loaded",
			Help: "Profiles currently loaded from the intro file",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		WSConnections, SessionsActive, ExpansionsTotal,
		NeighborLookupDuration, NeighborCacheHits, NeighborCacheMisses,
		ProfilesLoaded,
	)
}

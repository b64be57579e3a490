package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Router state metrics
	RouterRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "localstor_router_registered",
			Help: "Whether the router is registered (1 = registered, 0 = unregistered)",
		},
	)

	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "localstor_backend_connections_active",
			Help: "Number of open backend connections",
		},
	)

	SystemsRouted = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "localstor_systems_routed",
			Help: "Number of storage systems in the routing table",
		},
	)

	// Backend lifecycle metrics
	BackendOpenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstor_backend_open_total",
			Help: "Backend connection attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	BackendCloseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstor_backend_close_failures_total",
			Help: "Backend connections that failed to close cleanly",
		},
		[]string{"backend"},
	)

	SystemIDCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "localstor_system_id_collisions_total",
			Help: "System identifiers reported by more than one backend",
		},
	)

	// Dispatch metrics
	BackendCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstor_backend_calls_total",
			Help: "Calls forwarded to backends by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstor_requests_total",
			Help: "Router operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "localstor_request_duration_seconds",
			Help:    "Router operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Event metrics
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstor_events_published_total",
			Help: "Storage events published by type",
		},
		[]string{"type"},
	)

	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "localstor_events_dropped_total",
			Help: "Storage events dropped because a queue was full",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(RouterRegistered)
	prometheus.MustRegister(ConnectionsActive)
	prometheus.MustRegister(SystemsRouted)
	prometheus.MustRegister(BackendOpenTotal)
	prometheus.MustRegister(BackendCloseFailures)
	prometheus.MustRegister(SystemIDCollisions)
	prometheus.MustRegister(BackendCallsTotal)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(EventsDropped)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result label values
const (
	ResultOK          = "ok"
	ResultError       = "error"
	ResultUnsupported = "unsupported"
	ResultSkipped     = "skipped"
)

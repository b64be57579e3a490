/*
Package metrics provides Prometheus metrics and health reporting for localstor.

All metrics are registered on the default Prometheus registry at package init
and exposed through Handler.

# Metrics

Router state (published by Collector from a router Snapshot):

	localstor_router_registered            gauge
	localstor_backend_connections_active   gauge
	localstor_systems_routed               gauge

Events (recorded directly by the router):

	localstor_backend_open_total{backend,result}
	localstor_backend_close_failures_total{backend}
	localstor_system_id_collisions_total
	localstor_backend_calls_total{backend,operation,result}
	localstor_requests_total{operation,status}
	localstor_request_duration_seconds{operation}

# Health

The router registers itself as the "router" component and every backend it
tried to activate as "backend/<id>". A backend that was skipped under
ignore_init_error degrades health but does not make the process unhealthy;
readiness follows the router component only.

	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
*/
package metrics

/*
Package api serves the router's storage inventory, health and metrics over
HTTP for `localstor serve`.

# Endpoints

	GET /health                         component health (metrics.HealthHandler)
	GET /ready                          readiness (metrics.ReadyHandler)
	GET /metrics                        Prometheus metrics
	GET /v1/info                        router name and version
	GET /v1/systems                     systems found at registration
	GET /v1/systems/{id}/capabilities   supported capability numbers
	GET /v1/disks                       also pools, volumes, batteries, fs, exports
	GET /v1/exports/auth                NFS authentication types

List endpoints accept search_key and search_value query parameters, passed
through unchanged to the router:

	curl 'http://127.0.0.1:9180/v1/volumes?search_key=system_id&search_value=SV03403550'

The API is read-only. Storage errors are returned as JSON with the code name
and number; INVALID_ARGUMENT maps to 400, NOT_FOUND_* to 404, NO_SUPPORT to
501 and everything else to 500.
*/
package api

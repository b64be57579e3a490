/*
Package health runs periodic liveness checks against active storage
backends.

A Checker probes one component and returns a Result. The Monitor runs all
checkers on an interval and keeps a Status per component; a component is
marked unhealthy only after Config.Retries consecutive failures and
healthy again after the first success. Every round is passed to a
Reporter, which the serve command points at the metrics health registry
so /ready reflects live backend state.

	checker := health.NewProbeChecker("backend:megaraid", func(ctx context.Context) error {
		return r.Probe(ctx, backend.Megaraid)
	})
	monitor := health.NewMonitor(health.DefaultConfig(), metrics.UpdateComponent, checker)
	monitor.Start()
	defer monitor.Stop()
*/
package health

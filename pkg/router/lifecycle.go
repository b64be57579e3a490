package router

import (
	"context"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/events"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
)

// Unregister closes every backend connection. Every connection is attempted
// even if some fail; the failures are returned together. Calling it again,
// or before Register, is a no-op.
func (r *Router) Unregister(ctx context.Context, flags backend.Flags) (err error) {
	defer r.finish("unregister", metrics.NewTimer(), &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRegistered {
		return nil
	}

	err = r.closeAll(ctx, r.conns, flags)

	r.conns = nil
	r.systems = nil
	r.routes = make(map[string]*connection)
	r.exportConn = nil
	r.state = StateUnregistered

	// skipped backends never got a connection but still left a component
	metrics.RemoveBackendComponents()
	metrics.RemoveComponent(metrics.ComponentRouter)
	r.logger.Info().Msg("router unregistered")
	r.publish(events.EventRouterUnregistered, nil, "", "router unregistered", nil)
	return err
}

// Close releases the router. It is meant to be deferred right after a
// successful Register.
func (r *Router) Close() error {
	return r.Unregister(context.Background(), backend.FlagReserved)
}

// TimeoutGet returns the last timeout set, or DefaultTimeout
func (r *Router) TimeoutGet() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.timeout
}

// TimeoutSet stores the timeout and pushes it to every active connection.
// The first connection that rejects it aborts the call.
func (r *Router) TimeoutSet(ctx context.Context, timeout time.Duration, flags backend.Flags) (err error) {
	defer r.finish("time_out_set", metrics.NewTimer(), &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.timeout = timeout
	for _, c := range r.conns {
		err := c.conn.TimeoutSet(ctx, timeout, flags)
		r.record(c, "time_out_set", err)
		if err != nil {
			blog := log.WithBackend(r.logger, string(c.id))
			blog.Warn().Err(err).Dur("timeout", timeout).Msg("backend rejected timeout")
			return err
		}
	}
	return nil
}

// JobStatus is not supported: no backend job is tracked by the router
func (r *Router) JobStatus(ctx context.Context, jobID string, flags backend.Flags) (status types.JobStatus, percent int, err error) {
	defer r.finish("job_status", metrics.NewTimer(), &err)
	return 0, 0, errdefs.New(errdefs.NoSupport, "Not supported yet")
}

// JobFree is not supported: no backend job is tracked by the router
func (r *Router) JobFree(ctx context.Context, jobID string, flags backend.Flags) (err error) {
	defer r.finish("job_free", metrics.NewTimer(), &err)
	return errdefs.New(errdefs.NoSupport, "Not supported yet")
}

// Probe checks that one active backend still answers by listing its systems
func (r *Router) Probe(ctx context.Context, id backend.ID) (err error) {
	defer r.finish("probe", metrics.NewTimer(), &err)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.conns {
		if c.id != id {
			continue
		}
		_, err = c.conn.Systems(ctx, backend.FlagReserved)
		r.record(c, "probe", err)
		return err
	}
	return errdefs.Newf(errdefs.InvalidArgument, "backend %s is not active", id)
}

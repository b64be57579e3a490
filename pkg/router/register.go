package router

import (
	"context"
	"strconv"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/discovery"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/events"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
	"go.uber.org/multierr"
)

// Register selects the backends to activate, opens a connection to each and
// builds the system routing table. On failure nothing is left open.
func (r *Router) Register(ctx context.Context, uri string, password string, timeout time.Duration, flags backend.Flags) (err error) {
	defer r.finish("register", metrics.NewTimer(), &err)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRegistered {
		return errdefs.New(errdefs.InvalidArgument, "already registered")
	}
	defer func() {
		if err != nil {
			metrics.UpdateComponent(metrics.ComponentRouter, false, err.Error())
		}
	}()
	if timeout > 0 {
		r.timeout = timeout
	}

	if !r.privileged() {
		return errdefs.New(errdefs.InvalidArgument, "This plugin requires root privilege both daemon and client")
	}

	opts, err := discovery.ParseOptions(uri, r.selector.Catalog())
	if err != nil {
		return err
	}

	ids, err := r.selector.Select(opts)
	if err != nil {
		return err
	}
	r.logger.Debug().Interface("backends", ids).Msg("backends selected")

	var opened []*connection
	defer r.closeOnPanic(ctx, &opened, flags)

	conns, err := r.connect(ctx, ids, opts, password, flags)
	if err != nil {
		return err
	}
	opened = conns

	routes, systems, err := r.buildRoutingTable(ctx, conns, flags)
	if err == nil && len(routes) == 0 {
		err = errdefs.New(errdefs.NoSupport, "No supported systems found")
	}
	if err != nil {
		if cerr := r.closeAll(ctx, conns, flags); cerr != nil {
			r.logger.Warn().Err(cerr).Msg("failed to close backends after registration failure")
		}
		return err
	}
	opened = nil

	r.conns = conns
	r.routes = routes
	r.systems = systems
	r.exportConn = nil
	for _, c := range conns {
		if c.id.ExportCapable() {
			r.exportConn = c
		}
	}
	r.state = StateRegistered

	metrics.UpdateComponent(metrics.ComponentRouter, true, "")
	for _, c := range conns {
		r.publish(events.EventBackendActivated, c, "", "backend activated", map[string]string{"target": c.target})
	}
	r.publish(events.EventRouterRegistered, nil, "", "router registered", map[string]string{
		"backends": strconv.Itoa(len(conns)),
		"systems":  strconv.Itoa(len(systems)),
	})
	r.logger.Info().
		Int("backends", len(conns)).
		Int("systems", len(systems)).
		Msg("router registered")
	return nil
}

// connect opens one connection per selected backend. Without
// IgnoreInitError the first failure closes everything opened so far.
func (r *Router) connect(ctx context.Context, ids []backend.ID, opts *discovery.Options, password string, flags backend.Flags) ([]*connection, error) {
	conns := make([]*connection, 0, len(ids))
	defer r.closeOnPanic(ctx, &conns, flags)

	for _, id := range ids {
		target := opts.Target(id).String()
		blog := log.WithBackend(r.logger, string(id))

		conn, err := r.opener.Open(ctx, target, password, r.timeout, flags)
		if err != nil {
			metrics.UpdateComponent(metrics.BackendComponent(string(id)), false, err.Error())
			if opts.IgnoreInitError {
				metrics.BackendOpenTotal.WithLabelValues(string(id), metrics.ResultSkipped).Inc()
				blog.Warn().Err(err).Str("target", target).Msg("skipping backend that failed to initialize")
				r.publish(events.EventBackendSkipped, &connection{id: id, target: target}, "", err.Error(), nil)
				continue
			}
			metrics.BackendOpenTotal.WithLabelValues(string(id), metrics.ResultError).Inc()
			blog.Error().Err(err).Str("target", target).Msg("backend failed to initialize")
			if cerr := r.closeAll(ctx, conns, flags); cerr != nil {
				r.logger.Warn().Err(cerr).Msg("failed to close backends after initialization failure")
			}
			return nil, err
		}

		metrics.BackendOpenTotal.WithLabelValues(string(id), metrics.ResultOK).Inc()
		metrics.UpdateComponent(metrics.BackendComponent(string(id)), true, "")
		blog.Info().Str("target", target).Msg("backend activated")
		conns = append(conns, &connection{id: id, target: target, conn: conn})
	}

	return conns, nil
}

// buildRoutingTable binds every reported system to its connection. When two
// backends report the same system id the later one wins.
func (r *Router) buildRoutingTable(ctx context.Context, conns []*connection, flags backend.Flags) (map[string]*connection, []*types.System, error) {
	routes := make(map[string]*connection)
	index := make(map[string]int)
	var systems []*types.System

	for _, c := range conns {
		found, err := c.conn.Systems(ctx, flags)
		r.record(c, "systems", err)
		if err != nil {
			return nil, nil, err
		}

		for _, sys := range found {
			if prev, ok := routes[sys.ID]; ok {
				metrics.SystemIDCollisions.Inc()
				sysLog := log.WithSystemID(r.logger, sys.ID)
				sysLog.Warn().
					Str("previous_backend", string(prev.id)).
					Str("backend", string(c.id)).
					Msg("system reported by more than one backend, keeping the later one")
				r.publish(events.EventSystemCollision, c, sys.ID, "system reported by more than one backend",
					map[string]string{"previous_backend": string(prev.id)})
				systems[index[sys.ID]] = sys
				routes[sys.ID] = c
				continue
			}
			index[sys.ID] = len(systems)
			systems = append(systems, sys)
			routes[sys.ID] = c
		}
	}

	return routes, systems, nil
}

// closeOnPanic closes the given connections before letting a panic
// continue to finish. It must be deferred directly.
func (r *Router) closeOnPanic(ctx context.Context, conns *[]*connection, flags backend.Flags) {
	rec := recover()
	if rec == nil {
		return
	}
	if cerr := r.closeAll(ctx, *conns, flags); cerr != nil {
		r.logger.Warn().Err(cerr).Msg("failed to close backends after panic")
	}
	panic(rec)
}

// closeAll closes every connection, continuing past failures
func (r *Router) closeAll(ctx context.Context, conns []*connection, flags backend.Flags) error {
	var errs error
	for _, c := range conns {
		err := c.conn.Close(ctx, flags)
		r.record(c, "close", err)
		metrics.RemoveComponent(metrics.BackendComponent(string(c.id)))
		if err != nil {
			metrics.BackendCloseFailures.WithLabelValues(string(c.id)).Inc()
			blog := log.WithBackend(r.logger, string(c.id))
			blog.Warn().Err(err).Msg("failed to close backend")
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

package router

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/discovery"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/events"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// Name is the display name reported by Info
	Name = "Local Pseudo Plugin"

	// DefaultTimeout is used until Register or TimeoutSet provides one
	DefaultTimeout = 3000 * time.Millisecond
)

// Version is the router version reported by Info (set via ldflags during build)
var Version = "dev"

// State is the router lifecycle state
type State int

const (
	StateUnregistered State = iota
	StateRegistered
)

func (s State) String() string {
	if s == StateRegistered {
		return "registered"
	}
	return "unregistered"
}

// connection is one activated backend
type connection struct {
	id     backend.ID
	target string
	conn   backend.Connection
}

// Router presents every activated backend as one storage-management endpoint.
// A Router must be released with Close (or Unregister) once registered.
type Router struct {
	mu sync.RWMutex

	opener     backend.Opener
	selector   *discovery.Selector
	privileged func() bool
	logger     zerolog.Logger
	events     *events.Broker

	state      State
	timeout    time.Duration
	conns      []*connection
	systems    []*types.System
	routes     map[string]*connection
	exportConn *connection
}

// Option configures a Router
type Option func(*Router)

// WithSelector replaces the default host-probing selector
func WithSelector(s *discovery.Selector) Option {
	return func(r *Router) {
		r.selector = s
	}
}

// WithPrivilegeCheck replaces the effective-uid check run by Register
func WithPrivilegeCheck(check func() bool) Option {
	return func(r *Router) {
		r.privileged = check
	}
}

// WithLogger replaces the component logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithEvents publishes backend activation and every successful change to broker
func WithEvents(broker *events.Broker) Option {
	return func(r *Router) {
		r.events = broker
	}
}

// New creates an unregistered router that opens backends through opener
func New(opener backend.Opener, opts ...Option) *Router {
	r := &Router{
		opener:     opener,
		selector:   discovery.NewSelector(discovery.DefaultCatalog(), discovery.NewHostInventory()),
		privileged: isPrivileged,
		logger:     log.WithComponent("router"),
		timeout:    DefaultTimeout,
		routes:     make(map[string]*connection),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current lifecycle state
func (r *Router) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Backends returns the activated backends in activation order
func (r *Router) Backends() []backend.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]backend.ID, 0, len(r.conns))
	for _, c := range r.conns {
		ids = append(ids, c.id)
	}
	return ids
}

// Snapshot implements metrics.Source
func (r *Router) Snapshot() metrics.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return metrics.Snapshot{
		Registered:  r.state == StateRegistered,
		Connections: len(r.conns),
		Systems:     len(r.routes),
	}
}

// Info returns the display name and version of the router
func (r *Router) Info() (string, string) {
	return Name, Version
}

// finish is deferred by every public operation. It turns panics and
// non-domain errors into PluginBug and records request metrics.
func (r *Router) finish(op string, timer *metrics.Timer, errp *error) {
	if rec := recover(); rec != nil {
		r.logger.Error().Str("operation", op).Interface("panic", rec).Msg("recovered from panic")
		*errp = errdefs.Newf(errdefs.PluginBug, "Got unexpected error %v", rec)
	}
	*errp = errdefs.Unexpected(*errp)

	status := metrics.ResultOK
	if code, ok := errdefs.CodeOf(*errp); ok {
		status = strings.ToLower(code.String())
	}
	metrics.RequestsTotal.WithLabelValues(op, status).Inc()
	timer.ObserveDurationVec(metrics.RequestDuration, op)
}

// record counts one forwarded backend call
func (r *Router) record(c *connection, op string, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errdefs.IsNoSupport(err):
		result = metrics.ResultUnsupported
	default:
		result = metrics.ResultError
	}
	metrics.BackendCallsTotal.WithLabelValues(string(c.id), op, result).Inc()
}

// publish emits an event if a broker is configured. c may be nil.
func (r *Router) publish(typ events.EventType, c *connection, systemID, message string, metadata map[string]string) {
	if r.events == nil {
		return
	}
	event := &events.Event{
		Type:     typ,
		SystemID: systemID,
		Message:  message,
		Metadata: metadata,
	}
	if c != nil {
		event.Backend = string(c.id)
	}
	r.events.Publish(event)
	metrics.EventsPublished.WithLabelValues(string(typ)).Inc()
}

func requireOperand(name string, isNil bool) error {
	if isNil {
		return errdefs.New(errdefs.InvalidArgument, fmt.Sprintf("%s is required", name))
	}
	return nil
}

package backend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cuemby/localstor/pkg/errdefs"
)

// Factory creates a connection for a parsed target
type Factory func(ctx context.Context, target *Target, password string, timeout time.Duration, flags Flags) (Connection, error)

// Registry is an Opener that dispatches on the target scheme
type Registry struct {
	mu        sync.RWMutex
	factories map[ID]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[ID]Factory),
	}
}

// Register installs the factory for a backend kind, replacing any previous one
func (r *Registry) Register(id ID, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// Registered returns the backend kinds with a factory, sorted
func (r *Registry) Registered() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Open parses target and hands it to the matching factory
func (r *Registry) Open(ctx context.Context, target string, password string, timeout time.Duration, flags Flags) (Connection, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, errdefs.New(errdefs.InvalidArgument, err.Error())
	}

	r.mu.RLock()
	factory, ok := r.factories[t.Backend]
	r.mu.RUnlock()
	if !ok {
		return nil, errdefs.Newf(errdefs.NoSupport, "no backend implementation registered for %q", t.Backend)
	}

	return factory(ctx, t, password, timeout, flags)
}

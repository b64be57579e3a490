package discovery

import (
	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/rs/zerolog"
)

// Selector decides which backends to activate
type Selector struct {
	catalog   *Catalog
	inventory Inventory
	logger    zerolog.Logger
}

// NewSelector creates a selector over the given catalog and inventory
func NewSelector(catalog *Catalog, inventory Inventory) *Selector {
	return &Selector{
		catalog:   catalog,
		inventory: inventory,
		logger:    log.WithComponent("discovery"),
	}
}

// Catalog returns the catalog the selector resolves signals with
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// Select returns the backends to activate, in rule order with duplicates
// removed. An explicit Only override skips probing entirely.
func (s *Selector) Select(opts *Options) ([]backend.ID, error) {
	if opts != nil && opts.Only != "" {
		if !s.catalog.Contains(opts.Only) {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "Plugin defined in only=%s is not supported", opts.Only)
		}
		return []backend.ID{opts.Only}, nil
	}

	modules, err := s.inventory.Modules()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(modules))
	for _, m := range modules {
		present[m] = true
	}

	seen := make(map[backend.ID]bool)
	var selected []backend.ID
	for _, rule := range s.catalog.Rules {
		if !present[rule.Signal] {
			continue
		}

		id := rule.Backend
		if rule.Arbitration != nil {
			id = rule.Arbitration.Resolve(s.inventory)
			s.logger.Debug().
				Str("signal", rule.Signal).
				Str("backend", string(id)).
				Msg("resolved ambiguous hardware signal")
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, id)
	}

	if len(selected) == 0 {
		return nil, errdefs.New(errdefs.NoSupport, "No supported hardware found")
	}
	return selected, nil
}

package discovery

import (
	"github.com/cuemby/localstor/pkg/backend"
)

// Candidate is one contender for an ambiguous signal. It wins when any of
// its tools is installed.
type Candidate struct {
	Backend backend.ID
	Tools   []string
}

// Arbitration resolves a signal that more than one backend can claim.
// Candidates are tried in order; Fallback is used when none of their tools
// is installed, so its own initialization reports the missing tool.
type Arbitration struct {
	Candidates []Candidate
	Fallback   backend.ID
}

// Resolve picks the winning backend using the inventory's tool probes
func (a *Arbitration) Resolve(inv Inventory) backend.ID {
	for _, c := range a.Candidates {
		for _, tool := range c.Tools {
			if inv.HasTool(tool) {
				return c.Backend
			}
		}
	}
	return a.Fallback
}

// Rule maps one hardware signal (kernel module name) to a backend, either
// directly or through an Arbitration.
type Rule struct {
	Signal      string
	Backend     backend.ID
	Arbitration *Arbitration
}

// Catalog is the ordered set of rules used for hardware probing
type Catalog struct {
	Rules []Rule
}

// DefaultCatalog returns the kernel module to backend mapping for the
// supported controller families.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Rules: []Rule{
			{Signal: "megaraid_sas", Backend: backend.Megaraid},
			{Signal: "hpsa", Backend: backend.HPSA},
			{Signal: "aacraid", Backend: backend.Arcconf},
			{
				// smartpqi controllers are manageable by both arcconf and ssacli
				Signal: "smartpqi",
				Arbitration: &Arbitration{
					Candidates: []Candidate{
						{Backend: backend.Arcconf, Tools: []string{"arcconf"}},
						{Backend: backend.HPSA, Tools: []string{"ssacli", "hpssacli"}},
					},
					Fallback: backend.Arcconf,
				},
			},
			{Signal: "nfsd", Backend: backend.NFS},
		},
	}
}

// Backends returns every backend the catalog can produce, in first-mention order
func (c *Catalog) Backends() []backend.ID {
	seen := make(map[backend.ID]bool)
	var out []backend.ID
	add := func(id backend.ID) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, r := range c.Rules {
		add(r.Backend)
		if r.Arbitration != nil {
			for _, cand := range r.Arbitration.Candidates {
				add(cand.Backend)
			}
			add(r.Arbitration.Fallback)
		}
	}
	return out
}

// Contains reports whether id is one of the catalog's backends
func (c *Catalog) Contains(id backend.ID) bool {
	for _, b := range c.Backends() {
		if b == id {
			return true
		}
	}
	return false
}

// Signal returns the first signal that selects id directly
func (c *Catalog) Signal(id backend.ID) (string, bool) {
	for _, r := range c.Rules {
		if r.Arbitration == nil && r.Backend == id {
			return r.Signal, true
		}
	}
	return "", false
}

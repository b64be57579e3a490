package discovery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/errdefs"
)

// Connection string parameters understood by the router itself
const (
	ParamOnly            = "only"
	ParamIgnoreInitError = "ignore_init_error"
)

// Options are the router settings carried in its connection string
type Options struct {
	// Only forces a single backend, skipping hardware probing
	Only backend.ID

	// IgnoreInitError skips backends that fail to open instead of aborting
	IgnoreInitError bool

	// SubParams holds "<backend>_<key>=<value>" parameters with the prefix stripped
	SubParams map[backend.ID]map[string]string
}

// ParseOptions extracts Options from a connection string such as
// "local://?only=megaraid&megaraid_tool=/opt/storcli".
func ParseOptions(uri string, catalog *Catalog) (*Options, error) {
	opts := &Options{SubParams: make(map[backend.ID]map[string]string)}
	if uri == "" {
		return opts, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, errdefs.Newf(errdefs.InvalidArgument, "invalid connection string %q: %v", uri, err)
	}
	query := u.Query()

	if v := query.Get(ParamIgnoreInitError); v != "" {
		ignore, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errdefs.Newf(errdefs.InvalidArgument, "invalid %s=%s, expecting true or false", ParamIgnoreInitError, v)
		}
		opts.IgnoreInitError = ignore
	}

	// Select rejects an override the catalog does not know
	opts.Only = backend.ID(query.Get(ParamOnly))

	for key, values := range query {
		if len(values) == 0 {
			continue
		}
		for _, id := range catalog.Backends() {
			prefix := string(id) + "_"
			if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
				continue
			}
			if opts.SubParams[id] == nil {
				opts.SubParams[id] = make(map[string]string)
			}
			opts.SubParams[id][key[len(prefix):]] = values[len(values)-1]
		}
	}

	return opts, nil
}

// Target builds the connection target for a selected backend
func (o *Options) Target(id backend.ID) backend.Target {
	return backend.Target{Backend: id, Params: o.SubParams[id]}
}

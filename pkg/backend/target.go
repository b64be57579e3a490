package backend

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Target names a backend and the sub-parameters forwarded to it,
// rendered as "<id>://" or "<id>://?k1=v1&k2=v2".
type Target struct {
	Backend ID
	Params  map[string]string
}

// String renders the target with parameters in key order
func (t Target) String() string {
	s := string(t.Backend) + "://"
	if len(t.Params) == 0 {
		return s
	}

	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+t.Params[k])
	}
	return s + "?" + strings.Join(pairs, "&")
}

// ParseTarget parses a target string produced by Target.String
func ParseTarget(s string) (*Target, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid backend target %q: %w", s, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("invalid backend target %q: missing scheme", s)
	}

	params := make(map[string]string)
	for k, v := range u.Query() {
		if len(v) > 0 {
			params[k] = v[len(v)-1]
		}
	}
	return &Target{Backend: ID(u.Scheme), Params: params}, nil
}

package health

import (
	"context"
	"time"
)

// ProbeChecker reports healthy when its probe returns nil
type ProbeChecker struct {
	name  string
	probe func(ctx context.Context) error
}

// NewProbeChecker creates a checker named name around probe
func NewProbeChecker(name string, probe func(ctx context.Context) error) *ProbeChecker {
	return &ProbeChecker{name: name, probe: probe}
}

// Name returns the component name
func (p *ProbeChecker) Name() string {
	return p.name
}

// Check runs the probe once
func (p *ProbeChecker) Check(ctx context.Context) Result {
	start := time.Now()
	err := p.probe(ctx)

	result := Result{
		Healthy:   err == nil,
		Message:   "ok",
		CheckedAt: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result
}

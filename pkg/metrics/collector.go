package metrics

import (
	"time"
)

// Snapshot is the router state the collector publishes as gauges
type Snapshot struct {
	Registered  bool
	Connections int
	Systems     int
}

// Source is anything that can report a Snapshot (the router)
type Source interface {
	Snapshot() Snapshot
}

// Collector periodically copies router state into gauges
type Collector struct {
	source   Source
	interval time.Duration
	stopCh   chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(source Source, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.Collect()

		for {
			select {
			case <-ticker.C:
				c.Collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

// Collect publishes one snapshot
func (c *Collector) Collect() {
	snap := c.source.Snapshot()

	if snap.Registered {
		RouterRegistered.Set(1)
	} else {
		RouterRegistered.Set(0)
	}
	ConnectionsActive.Set(float64(snap.Connections))
	SystemsRouted.Set(float64(snap.Systems))
}

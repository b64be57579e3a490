package health

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/localstor/pkg/log"
	"github.com/rs/zerolog"
)

// Reporter receives the health of each component after every check
type Reporter func(name string, healthy bool, message string)

// Monitor runs a set of checkers on an interval and reports their status
type Monitor struct {
	config   Config
	checkers []Checker
	report   Reporter
	logger   zerolog.Logger

	mu       sync.RWMutex
	statuses map[string]*Status

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMonitor creates a monitor. Zero config fields take their defaults.
func NewMonitor(config Config, report Reporter, checkers ...Checker) *Monitor {
	def := DefaultConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.Retries <= 0 {
		config.Retries = def.Retries
	}

	statuses := make(map[string]*Status, len(checkers))
	for _, c := range checkers {
		statuses[c.Name()] = NewStatus()
	}

	return &Monitor{
		config:   config,
		checkers: checkers,
		report:   report,
		logger:   log.WithComponent("health"),
		statuses: statuses,
		stopCh:   make(chan struct{}),
	}
}

// Start begins checking in the background
func (m *Monitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.config.Interval)
		defer ticker.Stop()

		m.CheckAll(context.Background())
		for {
			select {
			case <-ticker.C:
				m.CheckAll(context.Background())
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop stops checking and waits for a running round to finish
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

// CheckAll runs every checker once
func (m *Monitor) CheckAll(ctx context.Context) {
	for _, c := range m.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
		result := c.Check(checkCtx)
		cancel()

		m.mu.Lock()
		status := m.statuses[c.Name()]
		wasHealthy := status.Healthy
		status.Update(result, m.config)
		healthy := status.Healthy
		m.mu.Unlock()

		if wasHealthy != healthy {
			m.logger.Warn().
				Str("component", c.Name()).
				Bool("healthy", healthy).
				Str("message", result.Message).
				Msg("health changed")
		}
		if m.report != nil {
			message := ""
			if !healthy {
				message = result.Message
			}
			m.report(c.Name(), healthy, message)
		}
	}
}

// Status returns a copy of the status of one component
func (m *Monitor) Status(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.statuses[name]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

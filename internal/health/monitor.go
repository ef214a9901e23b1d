package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/authkit/internal/core/classify"
	"github.com/vietddude/authkit/internal/core/domain"
	"github.com/vietddude/authkit/internal/metrics"
)

const (
	backendComponent = "backend"

	// criticalAfter is the number of consecutive backend failures that turn
	// degraded into critical.
	criticalAfter = 3
)

// BackendChecker queries the auth backend's health endpoint.
type BackendChecker interface {
	Health(ctx context.Context) (*domain.HealthReport, error)
}

// Pinger is a local dependency such as the session database or Redis.
type Pinger interface {
	Health(ctx context.Context) error
}

// DefaultCheckTimeout bounds a single health check.
const DefaultCheckTimeout = 5 * time.Second

// Monitor aggregates health status from the backend and local dependencies.
// Checks run outside the lock; readers get the cached report while a check
// is in flight.
type Monitor struct {
	backend      BackendChecker
	deps         map[string]Pinger
	classifier   *classify.Classifier
	minInterval  time.Duration
	checkTimeout time.Duration

	lastCheck  time.Time
	lastReport HealthReport
	failures   map[string]int
	checking   bool
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(backend BackendChecker, classifier *classify.Classifier) *Monitor {
	if classifier == nil {
		classifier = classify.Default
	}
	return &Monitor{
		backend:      backend,
		deps:         make(map[string]Pinger),
		classifier:   classifier,
		minInterval:  10 * time.Second,
		checkTimeout: DefaultCheckTimeout,
		failures:     make(map[string]int),
	}
}

// SetCheckTimeout changes the per-check deadline. Non-positive values are ignored.
func (m *Monitor) SetCheckTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkTimeout = d
}

// AddDependency registers a local dependency pinged on every check.
func (m *Monitor) AddDependency(name string, p Pinger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deps[name] = p
}

// CheckHealth returns the current report, probing at most once per minInterval.
// It never waits for a check started elsewhere.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	// Avoid hammering the backend when /health is polled aggressively
	fresh := time.Since(m.lastCheck) < m.minInterval && m.lastReport.Components != nil
	if fresh || m.checking {
		report := m.cached()
		m.mu.Unlock()
		return report
	}
	m.mu.Unlock()

	// A disconnecting client must not count as a backend failure.
	return m.refresh(context.WithoutCancel(ctx))
}

// Run checks every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report := m.refresh(ctx)

		if report.SystemStatus != StatusHealthy {
			slog.Warn("Auth backend unhealthy", "status", report.SystemStatus)
		} else {
			slog.Debug("Auth backend healthy")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// cached must be called with mu held. Before the first check completes it
// reports degraded with no components.
func (m *Monitor) cached() HealthReport {
	if m.lastReport.Components == nil {
		return HealthReport{SystemStatus: StatusDegraded, Components: map[string]ComponentHealth{}}
	}
	return m.lastReport
}

type checkResult struct {
	name   string
	health ComponentHealth
	err    bool
}

// refresh runs one check unless another is in flight, in which case it returns
// the cached report.
func (m *Monitor) refresh(ctx context.Context) HealthReport {
	m.mu.Lock()
	if m.checking {
		report := m.cached()
		m.mu.Unlock()
		return report
	}
	m.checking = true
	timeout := m.checkTimeout
	deps := make(map[string]Pinger, len(m.deps))
	for name, p := range m.deps {
		deps[name] = p
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := time.Now()
	var results []checkResult
	if m.backend != nil {
		results = append(results, m.checkBackend(ctx, now))
	}
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		results = append(results, m.checkDependency(ctx, name, deps[name], now))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checking = false

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(results)),
	}
	for _, r := range results {
		h := r.health
		if r.err {
			m.failures[r.name]++
			h.ConsecutiveFailures = m.failures[r.name]
			if r.name == backendComponent && h.ConsecutiveFailures >= criticalAfter {
				h.Status = StatusCritical
			}
		} else {
			m.failures[r.name] = 0
		}
		report.Components[r.name] = h
		report.SystemStatus = worst(report.SystemStatus, h.Status)
	}

	m.lastCheck = now
	m.lastReport = report
	return report
}

func (m *Monitor) checkBackend(ctx context.Context, now time.Time) checkResult {
	h := ComponentHealth{Name: backendComponent, Status: StatusHealthy, CheckedAt: now}

	res, err := m.backend.Health(ctx)
	if err != nil {
		metrics.BackendHealthy.Set(0)
		m.recordError(&h, err)
		h.Status = StatusDegraded
		return checkResult{name: backendComponent, health: h, err: true}
	}

	metrics.BackendHealthy.Set(1)
	if res != nil {
		h.Version = res.Version
		switch res.Status {
		case "", "ok", "healthy", "up":
		default:
			h.Status = StatusDegraded
		}
	}
	return checkResult{name: backendComponent, health: h}
}

func (m *Monitor) checkDependency(ctx context.Context, name string, p Pinger, now time.Time) checkResult {
	h := ComponentHealth{Name: name, Status: StatusHealthy, CheckedAt: now}
	if err := p.Health(ctx); err != nil {
		m.recordError(&h, classify.StorageFailure{Operation: name + " ping", Err: err})
		h.Status = StatusDegraded
		return checkResult{name: name, health: h, err: true}
	}
	return checkResult{name: name, health: h}
}

func (m *Monitor) recordError(h *ComponentHealth, err error) {
	ce := m.classifier.Classify(err)
	h.LastErrorKind = ce.Kind().String()
	h.LastError = ce.Message()
}

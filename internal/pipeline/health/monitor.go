package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/state"
	redisinfra "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/redis"
)

// Pinger reports database reachability.
type Pinger interface {
	Health(ctx context.Context) error
}

// Monitor aggregates health status from the triage components. Any of
// its dependencies may be nil; the matching check is then skipped.
type Monitor struct {
	state      *state.Manager
	deadLetter redisinfra.DeadLetter
	storeID    string
	db         Pinger

	// StaleAfter marks the run state degraded when the last checkpoint
	// is older than this. Zero disables the check.
	StaleAfter time.Duration
	// DeadLetterLimit marks the queue degraded above this backlog.
	DeadLetterLimit int64

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport []ComponentHealth
}

// NewMonitor creates a health monitor over the given components.
func NewMonitor(st *state.Manager, deadLetter redisinfra.DeadLetter, storeID string, db Pinger) *Monitor {
	return &Monitor{
		state:           st,
		deadLetter:      deadLetter,
		storeID:         storeID,
		db:              db,
		DeadLetterLimit: 100,
	}
}

// CheckHealth inspects each component. Results are cached briefly so
// scrape-heavy deployments do not hammer the backing services.
func (m *Monitor) CheckHealth(ctx context.Context) []ComponentHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < 10*time.Second && len(m.lastReport) > 0 {
		return m.lastReport
	}

	var report []ComponentHealth

	if m.state != nil {
		h := ComponentHealth{Component: "state", Status: StatusHealthy, LastRun: m.state.LastRun()}
		if m.StaleAfter > 0 && !h.LastRun.IsZero() && time.Since(h.LastRun) > m.StaleAfter {
			h.Status = StatusDegraded
			h.Detail = fmt.Sprintf("last run older than %s", m.StaleAfter)
		}
		report = append(report, h)
	}

	if m.deadLetter != nil {
		h := ComponentHealth{Component: "dead_letter", Status: StatusHealthy}
		n, err := m.deadLetter.Count(ctx, m.storeID)
		if err != nil {
			h.Status = StatusDegraded
			h.Detail = err.Error()
		} else {
			h.DeadLetter = n
			if m.DeadLetterLimit > 0 && n > m.DeadLetterLimit {
				h.Status = StatusDegraded
				h.Detail = "backlog above limit"
			}
		}
		report = append(report, h)
	}

	if m.db != nil {
		h := ComponentHealth{Component: "database", Status: StatusHealthy}
		if err := m.db.Health(ctx); err != nil {
			h.Status = StatusCritical
			h.Detail = err.Error()
		}
		report = append(report, h)
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}

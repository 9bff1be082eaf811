package health

import (
	"context"
	"errors"
	"testing"

	redisinfra "github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/redis"
)

// =============================================================================
// Mocks
// =============================================================================

type stubPinger struct {
	err error
}

func (s *stubPinger) Health(ctx context.Context) error { return s.err }

type stubDeadLetter struct {
	count int64
	err   error
}

func (s *stubDeadLetter) Push(ctx context.Context, chunk redisinfra.FailedChunk) error { return nil }
func (s *stubDeadLetter) Pop(ctx context.Context, storeID string) (*redisinfra.FailedChunk, bool, error) {
	return nil, false, nil
}
func (s *stubDeadLetter) Count(ctx context.Context, storeID string) (int64, error) {
	return s.count, s.err
}

// =============================================================================
// Tests
// =============================================================================

func TestCheckHealthAllHealthy(t *testing.T) {
	m := NewMonitor(nil, &stubDeadLetter{count: 3}, "test", &stubPinger{})

	report := m.CheckHealth(context.Background())
	if len(report) != 2 {
		t.Fatalf("components = %d, want 2", len(report))
	}
	for _, c := range report {
		if c.Status != StatusHealthy {
			t.Errorf("%s status = %s, want healthy", c.Component, c.Status)
		}
	}
}

func TestCheckHealthDeadLetterBacklog(t *testing.T) {
	m := NewMonitor(nil, &stubDeadLetter{count: 500}, "test", nil)
	m.DeadLetterLimit = 100

	report := m.CheckHealth(context.Background())
	if len(report) != 1 {
		t.Fatalf("components = %d, want 1", len(report))
	}
	if report[0].Status != StatusDegraded {
		t.Errorf("status = %s, want degraded for backlog of 500", report[0].Status)
	}
	if report[0].DeadLetter != 500 {
		t.Errorf("DeadLetter = %d, want 500", report[0].DeadLetter)
	}
}

func TestCheckHealthDatabaseDown(t *testing.T) {
	m := NewMonitor(nil, nil, "test", &stubPinger{err: errors.New("connection refused")})

	report := m.CheckHealth(context.Background())
	if len(report) != 1 {
		t.Fatalf("components = %d, want 1", len(report))
	}
	if report[0].Status != StatusCritical {
		t.Errorf("status = %s, want critical when database is unreachable", report[0].Status)
	}
}

func TestCheckHealthCachesReport(t *testing.T) {
	dl := &stubDeadLetter{count: 1}
	m := NewMonitor(nil, dl, "test", nil)

	first := m.CheckHealth(context.Background())
	dl.count = 9999
	second := m.CheckHealth(context.Background())

	if first[0].DeadLetter != second[0].DeadLetter {
		t.Error("report not cached within the check interval")
	}
}

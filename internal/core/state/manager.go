// Package state tracks triage progress across runs.
//
// The manager is a bookmark over a StateRepository: it remembers the
// pagination cursor, the cumulative processed count, and the per-label
// histogram, so an interrupted run can pick up where it left off. A
// missing or unreadable record is never fatal; the manager substitutes
// a fresh default and logs what happened.
//
// Cursor resumption is a policy, not a given: a stored cursor is only
// safe when the query that defines the page sequence is stable under the
// mutations the run itself performs. A run that removes messages from
// its own result set (draining a label, processing unlabeled mail into
// labels) shifts the pages under the cursor and can skip or duplicate
// items. ResumeMode makes that decision explicit and testable.
package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

// ResumeMode decides whether a run may reuse a stored cursor.
type ResumeMode string

const (
	// ResumeAuto resumes only when the run's query is the provider's
	// configured stable query.
	ResumeAuto ResumeMode = "auto"
	// ResumeNever always starts from the first page.
	ResumeNever ResumeMode = "never"
	// ResumeAlways trusts the stored cursor regardless of the query.
	ResumeAlways ResumeMode = "always"
)

// Manager owns the state record for one backing-store/query combination.
// Single-writer discipline is assumed; concurrent managers over the same
// store ID will corrupt progress tracking.
type Manager struct {
	repo    storage.StateRepository
	storeID string
	rec     *domain.StateRecord
}

// NewManager loads (or defaults) the record for storeID. Load failures
// beyond not-found are logged and replaced with a fresh record.
func NewManager(ctx context.Context, repo storage.StateRepository, storeID, backingStoreID string) *Manager {
	m := &Manager{repo: repo, storeID: storeID}

	rec, err := repo.Load(ctx, storeID)
	switch {
	case err == nil:
		m.rec = rec
	case err == storage.ErrStateNotFound:
		m.rec = domain.NewStateRecord(backingStoreID)
	default:
		slog.Warn("State record unreadable, starting fresh",
			"store_id", storeID, "error", err)
		m.rec = domain.NewStateRecord(backingStoreID)
	}
	return m
}

// Cursor returns the stored resumption cursor, or "" if none.
func (m *Manager) Cursor() string { return m.rec.NextCursor }

// Total returns the cumulative processed count.
func (m *Manager) Total() int { return m.rec.TotalProcessed }

// History returns the live label histogram. Callers mutate it directly
// and persist via Save.
func (m *Manager) History() map[string]int { return m.rec.History }

// LastRun returns the time of the most recent checkpoint.
func (m *Manager) LastRun() time.Time { return m.rec.LastRun }

// IsResumable reports whether a cursor is stored.
func (m *Manager) IsResumable() bool { return m.rec.Resumable() }

// ResumeCursor applies the resumption policy: it returns the stored
// cursor when mode and query shape allow reuse, "" otherwise. Under
// ResumeAuto a cursor minted by a different query is never reused, even
// for a stable query; ResumeAlways is the explicit escape hatch.
func (m *Manager) ResumeCursor(mode ResumeMode, query, stableQuery string) string {
	switch mode {
	case ResumeAlways:
		return m.rec.NextCursor
	case ResumeNever:
		return ""
	default:
		if query != stableQuery {
			return ""
		}
		if m.rec.NextCursor != "" && m.rec.CursorQuery != query {
			slog.Warn("Stored cursor belongs to a different query, restarting",
				"store_id", m.storeID, "cursor_query", m.rec.CursorQuery, "query", query)
			return ""
		}
		return m.rec.NextCursor
	}
}

// Save checkpoints cursor, total, and histogram, tagging the cursor
// with the query that minted it. Write failures are logged, not
// returned: a lost checkpoint means reprocessing on the next run, which
// at-least-once semantics accept.
func (m *Manager) Save(ctx context.Context, cursor, query string, total int, history map[string]int) {
	m.rec.NextCursor = cursor
	m.rec.CursorQuery = ""
	if cursor != "" {
		m.rec.CursorQuery = query
	}
	m.rec.TotalProcessed = total
	m.rec.History = history
	m.rec.LastRun = time.Now().UTC()

	if err := m.repo.Save(ctx, m.storeID, m.rec); err != nil {
		slog.Error("Failed to checkpoint state", "store_id", m.storeID, "error", err)
	}
}

// Clear removes the persisted record and resets to defaults.
func (m *Manager) Clear(ctx context.Context) {
	if err := m.repo.Clear(ctx, m.storeID); err != nil {
		slog.Error("Failed to clear state", "store_id", m.storeID, "error", err)
	}
	m.rec = domain.NewStateRecord(m.rec.BackingStoreID)
}

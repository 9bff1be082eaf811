package domain

import "time"

// StateRecord is the persisted progress of a triage run. One record
// exists per backing-store/query combination; single-writer discipline
// is the caller's responsibility.
type StateRecord struct {
	// NextCursor is the opaque continuation token for resumption,
	// empty once a run has drained its query.
	NextCursor string `json:"next_cursor"`
	// CursorQuery is the query that minted NextCursor. A cursor is an
	// offset into one query's page sequence; resuming it under any
	// other query skips or duplicates pages.
	CursorQuery string `json:"cursor_query,omitempty"`
	// TotalProcessed is the cumulative processed count across runs.
	TotalProcessed int `json:"total_processed"`
	// History maps label name to cumulative count.
	History map[string]int `json:"history"`
	// LastRun is the wall-clock time of the most recent checkpoint.
	LastRun time.Time `json:"last_run"`
	// BackingStoreID identifies the provider the record belongs to.
	BackingStoreID string `json:"backing_store_id"`
}

// NewStateRecord returns the default (fresh) state for a backing store.
func NewStateRecord(backingStoreID string) *StateRecord {
	return &StateRecord{
		History:        make(map[string]int),
		BackingStoreID: backingStoreID,
	}
}

// Resumable reports whether the record carries a cursor to resume from.
func (s *StateRecord) Resumable() bool {
	return s.NextCursor != ""
}

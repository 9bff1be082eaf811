package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

// StateRepo implements storage.StateRepository over PostgreSQL. The
// single-row upsert gives the atomicity the contract requires.
type StateRepo struct {
	db *DB
}

// NewStateRepo creates a repository over an open connection.
func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

type stateRow struct {
	StoreID        string       `db:"store_id"`
	NextCursor     string       `db:"next_cursor"`
	CursorQuery    string       `db:"cursor_query"`
	TotalProcessed int64        `db:"total_processed"`
	History        []byte       `db:"history"`
	LastRun        sql.NullTime `db:"last_run"`
	BackingStoreID string       `db:"backing_store_id"`
}

func (r *StateRepo) Load(ctx context.Context, storeID string) (*domain.StateRecord, error) {
	var row stateRow
	err := r.db.GetContext(ctx, &row,
		`SELECT store_id, next_cursor, total_processed, history, last_run, backing_store_id
		 FROM triage_state WHERE store_id = $1`, storeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	rec := &domain.StateRecord{
		NextCursor:     row.NextCursor,
		CursorQuery:    row.CursorQuery,
		TotalProcessed: int(row.TotalProcessed),
		History:        make(map[string]int),
		BackingStoreID: row.BackingStoreID,
	}
	if row.LastRun.Valid {
		rec.LastRun = row.LastRun.Time
	}
	if len(row.History) > 0 {
		if err := json.Unmarshal(row.History, &rec.History); err != nil {
			return nil, fmt.Errorf("failed to parse state history: %w", err)
		}
	}
	return rec, nil
}

func (r *StateRepo) Save(ctx context.Context, storeID string, rec *domain.StateRecord) error {
	history, err := json.Marshal(rec.History)
	if err != nil {
		return fmt.Errorf("failed to encode state history: %w", err)
	}

	var lastRun sql.NullTime
	if !rec.LastRun.IsZero() {
		lastRun = sql.NullTime{Time: rec.LastRun.UTC(), Valid: true}
	} else {
		lastRun = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO triage_state (store_id, next_cursor, total_processed, history, last_run, backing_store_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (store_id) DO UPDATE SET
		   next_cursor = EXCLUDED.next_cursor,
		   total_processed = EXCLUDED.total_processed,
		   history = EXCLUDED.history,
		   last_run = EXCLUDED.last_run,
		   backing_store_id = EXCLUDED.backing_store_id`,
		storeID, rec.NextCursor, rec.CursorQuery, int64(rec.TotalProcessed), history, lastRun, rec.BackingStoreID)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (r *StateRepo) Clear(ctx context.Context, storeID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM triage_state WHERE store_id = $1`, storeID); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

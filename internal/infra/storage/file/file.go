// Package file persists triage state as JSON documents on disk, one file
// per store ID, with write-then-rename atomicity.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

// Store implements storage.StateRepository over a directory of JSON files.
type Store struct {
	dir string
}

// NewStore returns a file store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file backing a store ID.
func (s *Store) Path(storeID string) string {
	name := strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(storeID)
	return filepath.Join(s.dir, name+".json")
}

// Load reads and parses the record for a store ID.
func (s *Store) Load(ctx context.Context, storeID string) (*domain.StateRecord, error) {
	data, err := os.ReadFile(s.Path(storeID))
	if os.IsNotExist(err) {
		return nil, storage.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var rec domain.StateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if rec.History == nil {
		rec.History = make(map[string]int)
	}
	return &rec, nil
}

// Save writes the record to a temp file in the same directory and renames
// it over the target, so readers never observe a torn write.
func (s *Store) Save(ctx context.Context, storeID string, rec *domain.StateRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	target := s.Path(storeID)
	tmp, err := os.CreateTemp(s.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Clear removes the backing file.
func (s *Store) Clear(ctx context.Context, storeID string) error {
	err := os.Remove(s.Path(storeID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}

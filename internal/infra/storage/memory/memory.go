// Package memory provides an in-memory state repository for tests and
// ephemeral runs.
package memory

import (
	"context"
	"sync"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
	"github.com/organvm-iii-ergon/universal-mail--automation/internal/infra/storage"
)

// Store implements storage.StateRepository with a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.StateRecord
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{records: make(map[string]*domain.StateRecord)}
}

func (s *Store) Load(ctx context.Context, storeID string) (*domain.StateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[storeID]
	if !ok {
		return nil, storage.ErrStateNotFound
	}
	cp := *rec
	cp.History = make(map[string]int, len(rec.History))
	for k, v := range rec.History {
		cp.History[k] = v
	}
	return &cp, nil
}

func (s *Store) Save(ctx context.Context, storeID string, rec *domain.StateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.History = make(map[string]int, len(rec.History))
	for k, v := range rec.History {
		cp.History[k] = v
	}
	s.records[storeID] = &cp
	return nil
}

func (s *Store) Clear(ctx context.Context, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, storeID)
	return nil
}

package storage

import (
	"context"
	"errors"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

// ErrStateNotFound is returned when no state record exists for a store ID.
var ErrStateNotFound = errors.New("state record not found")

// StateRepository persists triage progress records. One record exists per
// backing-store/query combination, keyed by storeID. Implementations must
// make Save atomic enough that a concurrent reader never observes a
// half-written record.
type StateRepository interface {
	// Load retrieves the record for a store ID. Returns ErrStateNotFound
	// when nothing has been persisted yet.
	Load(ctx context.Context, storeID string) (*domain.StateRecord, error)

	// Save overwrites the record for a store ID.
	Save(ctx context.Context, storeID string, rec *domain.StateRecord) error

	// Clear removes the record for a store ID. Clearing a missing record
	// is not an error.
	Clear(ctx context.Context, storeID string) error
}

// Package mailstore defines the backing-store port: the narrow interface
// through which the triage engine reaches an arbitrary message repository
// (Gmail, IMAP, Mail.app, Graph, ...). Concrete adapters live outside
// this core; the in-memory implementation under memory/ exists for tests
// and dry runs.
package mailstore

import (
	"context"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

// Capability flags advertise optional provider features. The engine and
// orchestrator must behave correctly when a capability is absent: star
// bits are dropped rather than erroring, folder routing is skipped for
// label-only stores, and so on. Adapters declare capabilities explicitly;
// nothing in this codebase probes for optional methods at runtime.
type Capability uint32

const (
	// CapTrueLabels: multiple labels per message (Gmail-style).
	CapTrueLabels Capability = 1 << iota
	// CapFolders: one folder per message (IMAP/Outlook-style).
	CapFolders
	// CapStar: star/flag support.
	CapStar
	// CapArchive: remove from inbox without deleting.
	CapArchive
	// CapBatch: native batched fetch/mutate calls.
	CapBatch
	// CapSearch: server-side search queries.
	CapSearch
)

// Has reports whether all the given flags are present.
func (c Capability) Has(flags Capability) bool {
	return c&flags == flags
}

// ListResult is one page of message identifiers.
type ListResult struct {
	// Messages carry at least IDs; headers may require a details fetch.
	Messages []domain.Message
	// NextCursor continues the listing; empty on the last page.
	NextCursor string
	// TotalEstimate is the provider's guess at the result-set size,
	// -1 when unknown.
	TotalEstimate int
}

// Provider is the abstract backing store.
type Provider interface {
	// Name identifies the provider ("gmail", "imap", "memory", ...).
	Name() string

	// Capabilities returns the provider's feature flags.
	Capabilities() Capability

	// List returns up to limit message identifiers matching query,
	// continuing from cursor when non-empty.
	List(ctx context.Context, query string, limit int, cursor string) (*ListResult, error)

	// GetDetails fetches sender/subject/date for a single message.
	GetDetails(ctx context.Context, id string) (*domain.Message, error)

	// BatchGetDetails fetches details for many messages. Adapters
	// without a native batch call implement it with GetSequential.
	BatchGetDetails(ctx context.Context, ids []string) (map[string]*domain.Message, error)

	// Apply performs one action's mutations on its message.
	Apply(ctx context.Context, action *domain.Action) error

	// ApplyBatch performs an identical mutation set on many messages in
	// one call. A returned error fails the whole batch.
	ApplyBatch(ctx context.Context, actions []*domain.Action) error

	// EnsureCategoryExists creates the label/folder if missing and
	// returns the provider-scoped handle for it.
	EnsureCategoryExists(ctx context.Context, name string) (string, error)
}

// GetSequential is the default, non-optimized batch fetch: one GetDetails
// call per ID, skipping not-found messages, stopping on other errors.
func GetSequential(ctx context.Context, p Provider, ids []string) (map[string]*domain.Message, error) {
	out := make(map[string]*domain.Message, len(ids))
	for _, id := range ids {
		msg, err := p.GetDetails(ctx, id)
		if err != nil {
			if KindOf(err) == KindNotFound {
				continue
			}
			return out, err
		}
		out[id] = msg
	}
	return out, nil
}

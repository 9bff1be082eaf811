package triage

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

// VIPOverride forces tier/label handling for a matching sender.
type VIPOverride struct {
	Key           string
	SenderPattern string
	Tier          int
	Star          bool
	LabelOverride string
	Note          string
}

type vipEntry struct {
	VIPOverride
	re *regexp.Regexp
}

// VIPRegistry holds sender-pattern overrides in registration order.
// It is an explicit object owned by the decision engine, never a
// process-wide singleton, so tests can construct isolated registries.
type VIPRegistry struct {
	mu      sync.RWMutex
	entries []vipEntry
}

// NewVIPRegistry returns an empty registry.
func NewVIPRegistry() *VIPRegistry {
	return &VIPRegistry{}
}

// Add registers an override. A malformed sender pattern or invalid tier
// is a configuration error surfaced here, never during classification.
func (r *VIPRegistry) Add(v VIPOverride) error {
	re, err := regexp.Compile("(?i)" + v.SenderPattern)
	if err != nil {
		return fmt.Errorf("vip %q: invalid sender pattern %q: %w", v.Key, v.SenderPattern, err)
	}
	if !domain.ValidTier(v.Tier) {
		return fmt.Errorf("vip %q: invalid tier %d", v.Key, v.Tier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, vipEntry{VIPOverride: v, re: re})
	return nil
}

// Check scans entries in registration order and returns the first whose
// pattern matches the sender. Subjects are never consulted.
func (r *VIPRegistry) Check(sender string) (VIPOverride, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.re.MatchString(sender) {
			return e.VIPOverride, true
		}
	}
	return VIPOverride{}, false
}

// IsVIP reports whether any entry matches the sender.
func (r *VIPRegistry) IsVIP(sender string) bool {
	_, ok := r.Check(sender)
	return ok
}

// Len returns the number of registered overrides.
func (r *VIPRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

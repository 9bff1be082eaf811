package triage

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

var (
	// ErrDuplicatePriority is returned when two rules share a priority.
	ErrDuplicatePriority = errors.New("duplicate rule priority")

	// ErrNoCatchAll is returned when the taxonomy lacks exactly one
	// catch-all rule.
	ErrNoCatchAll = errors.New("taxonomy needs exactly one catch-all rule")

	// ErrBadPattern is returned when a rule pattern fails to compile.
	ErrBadPattern = errors.New("invalid rule pattern")
)

// compiledRule is a CategoryRule with its patterns compiled once.
type compiledRule struct {
	domain.CategoryRule
	patterns []*regexp.Regexp
}

// Taxonomy is the ordered, immutable rule table the classifier scans.
// Order is declaration order, not priority order; it is load-bearing
// and must survive construction, which is why rules live in a slice.
type Taxonomy struct {
	rules  []compiledRule
	byName map[string]*compiledRule
}

// NewTaxonomy validates and compiles an ordered rule list. It rejects
// duplicate priorities (ties would make classification nondeterministic),
// malformed patterns, and any table without exactly one catch-all.
func NewTaxonomy(rules []domain.CategoryRule) (*Taxonomy, error) {
	t := &Taxonomy{
		rules:  make([]compiledRule, 0, len(rules)),
		byName: make(map[string]*compiledRule, len(rules)),
	}

	seen := make(map[int]string, len(rules))
	catchAlls := 0

	for _, r := range rules {
		if prev, dup := seen[r.Priority]; dup {
			return nil, fmt.Errorf("%w: %d used by %q and %q",
				ErrDuplicatePriority, r.Priority, prev, r.Name)
		}
		seen[r.Priority] = r.Name

		cr := compiledRule{CategoryRule: r}
		isCatchAll := false
		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %q pattern %q: %v",
					ErrBadPattern, r.Name, p, err)
			}
			cr.patterns = append(cr.patterns, re)
			if p == ".*" {
				isCatchAll = true
			}
		}
		if isCatchAll {
			catchAlls++
			if r.Priority != domain.CatchAllPriority {
				return nil, fmt.Errorf("%w: catch-all %q has priority %d, want %d",
					ErrNoCatchAll, r.Name, r.Priority, domain.CatchAllPriority)
			}
		}

		t.rules = append(t.rules, cr)
		t.byName[r.Name] = &t.rules[len(t.rules)-1]
	}

	if catchAlls != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrNoCatchAll, catchAlls)
	}
	return t, nil
}

// Rule returns the rule for a label, if present.
func (t *Taxonomy) Rule(label string) (domain.CategoryRule, bool) {
	cr, ok := t.byName[label]
	if !ok {
		return domain.CategoryRule{}, false
	}
	return cr.CategoryRule, true
}

// Labels returns all label names in declaration order.
func (t *Taxonomy) Labels() []string {
	out := make([]string, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Name
	}
	return out
}

// Len returns the number of rules.
func (t *Taxonomy) Len() int { return len(t.rules) }

// TierFor returns the tier and time-sensitivity for a label, defaulting
// to TierReference / not sensitive for labels outside the taxonomy.
func (t *Taxonomy) TierFor(label string) (tier int, timeSensitive bool) {
	cr, ok := t.byName[label]
	if !ok {
		return domain.TierReference, false
	}
	tier = cr.Tier
	if !domain.ValidTier(tier) {
		tier = domain.TierReference
	}
	return tier, cr.TimeSensitive
}

// TierDistribution folds a per-label history into per-tier totals.
// Labels outside the taxonomy count against TierReference.
func (t *Taxonomy) TierDistribution(history map[string]int) map[int]int {
	dist := make(map[int]int, len(domain.Tiers()))
	for label, n := range history {
		tier, _ := t.TierFor(label)
		dist[tier] += n
	}
	return dist
}

// MergeRules returns a rule list with overrides applied on top of base:
// a rule whose name already exists replaces it in place, otherwise it is
// appended before the catch-all so the catch-all stays last.
func MergeRules(base, overrides []domain.CategoryRule) []domain.CategoryRule {
	out := append([]domain.CategoryRule(nil), base...)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Name == o.Name {
				out[i] = o
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Priority == domain.CatchAllPriority {
			out = append(out[:n-1], o, out[n-1])
		} else {
			out = append(out, o)
		}
	}
	return out
}

package triage

import "strings"

// Classifier matches messages against a taxonomy. It is stateless apart
// from the immutable taxonomy and safe for concurrent use.
type Classifier struct {
	taxonomy *Taxonomy
}

// NewClassifier returns a classifier over the given taxonomy.
func NewClassifier(t *Taxonomy) *Classifier {
	return &Classifier{taxonomy: t}
}

// Classify returns the winning label for a sender/subject pair.
//
// The combined lowercased "sender subject" text is tested against every
// rule in declaration order. A rule matches on the first of its patterns
// that hits, and the scan never stops early on a match: a later-declared
// rule with a lower priority number still out-ranks an earlier match.
// The result is the matching rule with the globally lowest priority
// number; the catch-all guarantees there always is one.
func (c *Classifier) Classify(sender, subject string) string {
	text := strings.ToLower(sender + " " + subject)

	best := ""
	bestPriority := int(^uint(0) >> 1)

	for _, rule := range c.taxonomy.rules {
		if rule.Priority >= bestPriority {
			continue
		}
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				best = rule.Name
				bestPriority = rule.Priority
				break
			}
		}
	}

	if best == "" {
		// Unreachable with a validated taxonomy; kept total regardless.
		best = CatchAllLabel
	}
	return best
}

// Taxonomy returns the taxonomy the classifier scans.
func (c *Classifier) Taxonomy() *Taxonomy {
	return c.taxonomy
}

package domain

// CategoryRule is one entry in the taxonomy. Declaration order of rules
// is significant and must be preserved; priority uniqueness is enforced
// at taxonomy construction.
type CategoryRule struct {
	// Name is the hierarchical label path, e.g. "Finance/Banking".
	Name string `yaml:"name"`
	// Patterns are regexes tested against the lowercased
	// "sender subject" text. A rule matches on its first matching pattern.
	Patterns []string `yaml:"patterns"`
	// Priority orders matches: lower number wins. The catch-all uses 999.
	Priority int `yaml:"priority"`
	// Tier is the priority tier (1..4) assigned to the label.
	Tier int `yaml:"tier"`
	// TimeSensitive marks labels eligible for age-based escalation.
	TimeSensitive bool `yaml:"time_sensitive"`
}

// CatchAllPriority is the priority reserved for the single catch-all rule.
const CatchAllPriority = 999

// CategorizationResult is the full output of the decision engine for one
// message. Recomputed on every call; never cached, because age-based
// escalation makes the inputs time-dependent.
type CategorizationResult struct {
	Label         string
	Tier          int
	TimeSensitive bool
	IsVIP         bool
	VIPNote       string
}

// EscalationResult describes an age-based escalation decision.
type EscalationResult struct {
	ShouldEscalate bool
	OriginalTier   int
	EscalatedTier  int
	Reason         string
}

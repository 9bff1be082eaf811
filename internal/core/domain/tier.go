package domain

// TierConfig describes the handling defaults for one priority tier.
type TierConfig struct {
	Number      int
	Name        string
	Color       string
	Folder      string // empty means no folder routing for this tier
	KeepInInbox bool
	Star        bool
}

// Tier numbers. The set is fixed and closed; escalation only ever moves
// a message toward TierCritical.
const (
	TierCritical  = 1
	TierImportant = 2
	TierDelegate  = 3
	TierReference = 4
)

// tiers holds the closed tier table, indexed by tier number.
var tiers = map[int]TierConfig{
	TierCritical: {
		Number:      TierCritical,
		Name:        "Critical",
		Color:       "red",
		KeepInInbox: true,
		Star:        true,
	},
	TierImportant: {
		Number:      TierImportant,
		Name:        "Important",
		Color:       "orange",
		Folder:      "Important",
		KeepInInbox: true,
	},
	TierDelegate: {
		Number: TierDelegate,
		Name:   "Delegate",
		Color:  "blue",
		Folder: "Delegate",
	},
	TierReference: {
		Number: TierReference,
		Name:   "Reference",
		Color:  "gray",
		Folder: "Reference",
	},
}

// TierFor returns the configuration for a tier number, clamping unknown
// values to TierReference so lookups are total.
func TierFor(n int) TierConfig {
	if cfg, ok := tiers[n]; ok {
		return cfg
	}
	return tiers[TierReference]
}

// Tiers returns the tier table ordered by number, critical first.
func Tiers() []TierConfig {
	out := make([]TierConfig, 0, len(tiers))
	for n := TierCritical; n <= TierReference; n++ {
		out = append(out, tiers[n])
	}
	return out
}

// ValidTier reports whether n names one of the four tiers.
func ValidTier(n int) bool {
	_, ok := tiers[n]
	return ok
}

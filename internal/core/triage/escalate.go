package triage

import (
	"fmt"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

// Age thresholds for escalation, in hours.
const (
	escalateSoftHours = 24
	escalateHardHours = 72
)

// Escalate maps (current tier, message age, time sensitivity) to an
// escalation decision. Rules form an ordered decision list; the first
// applicable one wins:
//
//  1. tier 1 never escalates,
//  2. under 24h nothing escalates,
//  3. 24–72h escalates to tier 2 only for time-sensitive messages at
//     tier 3 or below,
//  4. at 72h and beyond everything escalates to tier 1.
//
// Escalation is monotonic toward tier 1; the escalated tier is never a
// larger number than the original. Pure; the caller applies the result.
func Escalate(currentTier int, ageHours float64, timeSensitive bool) domain.EscalationResult {
	res := domain.EscalationResult{
		OriginalTier:  currentTier,
		EscalatedTier: currentTier,
	}

	switch {
	case currentTier == domain.TierCritical:
		res.Reason = "already at highest tier"

	case ageHours < escalateSoftHours:
		res.Reason = "younger than 24h"

	case ageHours < escalateHardHours:
		if timeSensitive && currentTier >= domain.TierDelegate {
			res.ShouldEscalate = true
			res.EscalatedTier = domain.TierImportant
			res.Reason = fmt.Sprintf("time-sensitive and %.0fh old", ageHours)
		} else {
			res.Reason = "not time-sensitive enough for mid-age escalation"
		}

	default:
		res.ShouldEscalate = true
		res.EscalatedTier = domain.TierCritical
		res.Reason = fmt.Sprintf("stale for %.0fh", ageHours)
	}

	return res
}

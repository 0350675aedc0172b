// Package result carries the types every detection engine and the
// coordinator use to report an outcome: the verdict ordering, the
// per-engine aggregate, and the counter bookkeeping every fusion policy
// shares.
package result

import "integritywatch/internal/detector"

// Verdict is a detection engine's or the coordinator's policy decision.
type Verdict string

const (
	VerdictBlock   Verdict = "BLOCK"
	VerdictFlag    Verdict = "FLAG"
	VerdictAllow   Verdict = "ALLOW"
	VerdictSkipped Verdict = "SKIPPED"
)

// rank gives the BLOCK > FLAG > ALLOW > SKIPPED promotion order used by
// fusion monotonicity (spec §8 item 5).
var rank = map[Verdict]int{
	VerdictBlock:   3,
	VerdictFlag:    2,
	VerdictAllow:   1,
	VerdictSkipped: 0,
}

// AtLeast reports whether v is at least as severe as other in the
// BLOCK > FLAG > ALLOW > SKIPPED order.
func (v Verdict) AtLeast(other Verdict) bool {
	return rank[v] >= rank[other]
}

// DetectionResult is a single engine's aggregated scan or monitor
// outcome. Counters are derived strictly from Items at construction time
// and never touched afterward — fusion is a pure function of Items plus
// the configuration snapshot captured at Run/CheckCurrentState entry.
type DetectionResult struct {
	Items    []detector.TechniqueResult `json:"items"`
	Verdict  Verdict                    `json:"verdict"`
	Reason   string                     `json:"reason"`
	Critical int                        `json:"critical"`
	High     int                        `json:"high"`
	Medium   int                        `json:"medium"`
	Low      int                        `json:"low"`

	// Browser-only fields; zero value elsewhere.
	SessionID           string  `json:"session_id,omitempty"`
	TotalViolations     int     `json:"total_violations,omitempty"`
	ExamDurationMinutes float64 `json:"exam_duration_minutes,omitempty"`
}

// Tally counts detected, non-failed items by tier into the Critical/
// High/Medium/Low counters. Engines call this once after running every
// detector, then apply their own fusion tree over the counts.
func Tally(items []detector.TechniqueResult) (critical, high, medium, low int) {
	for _, item := range items {
		if item.Failed() || !item.Detected {
			continue
		}
		switch item.Tier {
		case detector.TierCritical:
			critical++
		case detector.TierHigh:
			high++
		case detector.TierMedium:
			medium++
		case detector.TierLow:
			low++
		}
	}
	return critical, high, medium, low
}

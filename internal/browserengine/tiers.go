package browserengine

import "integritywatch/internal/detector"

// severityMapping follows spec §4.4's table: screen sharing, malicious
// extensions, and DOM manipulation are CRITICAL; tab switching is HIGH.
var severityMapping = map[string]detector.Tier{
	"Screen Sharing Detection":      detector.TierCritical,
	"Malicious Extension Detection": detector.TierCritical,
	"DOM Manipulation Detection":    detector.TierCritical,
	"Tab Switching Detection":       detector.TierHigh,
}

func severityFor(name string) detector.Tier {
	if t, ok := severityMapping[name]; ok {
		return t
	}
	return detector.TierUnknown
}

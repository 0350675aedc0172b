package browserengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"integritywatch/internal/detector"
)

// ScreenShareDetector matches SCREEN_SHARE_DETECTED events and pairs each
// with the chronologically next SCREEN_SHARE_STOPPED to total up
// duration, per spec §4.4.
type ScreenShareDetector struct {
	Violations []RawViolation
}

func (d ScreenShareDetector) Name() string                { return "Screen Sharing Detection" }
func (d ScreenShareDetector) SupportedPlatforms() []string { return nil }
func (d ScreenShareDetector) RequiresAdmin() bool          { return false }

func (d ScreenShareDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	shares := filter(d.Violations, TypeScreenShareDetected)
	stops := filter(d.Violations, TypeScreenShareStopped)

	if len(shares) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "No screen sharing activity detected"}
	}

	duration, unstopped := screenShareDuration(shares, stops)

	parts := []string{fmt.Sprintf("%d screen sharing incident(s) detected", len(shares))}
	if duration > 0 {
		parts = append(parts, fmt.Sprintf("total duration %.1fs", duration))
	}
	if unstopped > 0 {
		parts = append(parts, fmt.Sprintf("%d session(s) not stopped properly", unstopped))
	}

	urls := map[string]bool{}
	var urlOrder []string
	for _, v := range shares {
		if u := detailString(v, "url"); u != "" && !urls[u] {
			urls[u] = true
			urlOrder = append(urlOrder, u)
		}
	}
	if len(urlOrder) > 0 {
		sort.Strings(urlOrder)
		if len(urlOrder) > 3 {
			urlOrder = urlOrder[:3]
		}
		parts = append(parts, fmt.Sprintf("urls: %s", strings.Join(urlOrder, ", ")))
	}

	return detector.TechniqueResult{
		Name: name, Detected: true, Count: len(shares),
		Details: strings.Join(parts, " | "),
	}
}

// screenShareDuration implements spec §4.4/§8.7: each share is paired
// with the first stop strictly after it; durations (ms -> s) are summed.
// The result is non-negative and non-decreasing in the number of stops
// paired, since every paired delta is >= 0 and pairing never removes a
// previously counted delta.
func screenShareDuration(shares, stops []RawViolation) (totalSeconds float64, unmatched int) {
	for _, share := range shares {
		paired := false
		for _, stop := range stops {
			if stop.Timestamp <= share.Timestamp {
				continue
			}
			totalSeconds += float64(stop.Timestamp-share.Timestamp) / 1000.0
			paired = true
			break
		}
		if !paired {
			unmatched++
		}
	}
	return totalSeconds, unmatched
}

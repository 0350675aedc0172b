package browserengine

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"integritywatch/internal/detector"
)

var tabSwitchingTypes = []ViolationType{
	TypeSuspiciousTabActivated,
	TypeSuspiciousTabAlreadyOpen,
	TypeSuspiciousTabNavigation,
}

// urlCategories classifies a tab URL's host against three pattern sets,
// per spec §4.4. The "communication" set is the canonical
// suspicious-domain list from spec §6.
var urlCategories = map[string][]string{
	"communication": {
		"meet.google.com", "teams.microsoft.com", "zoom.us", "discord.com",
		"slack.com", "whatsapp.com", "telegram.org", "messenger.com",
		"chat.google.com", "hangouts.google.com", "whereby.com",
		"jitsi.org", "8x8.vc", "webex.com",
	},
	"search": {"google.com/search", "bing.com/search", "duckduckgo.com"},
	"social": {"facebook.com", "twitter.com", "instagram.com", "reddit.com"},
}

// categoryOrder fixes iteration order for deterministic details strings.
var categoryOrder = []string{"communication", "search", "social"}

// TabSwitchingDetector matches SUSPICIOUS_TAB_* events, categorizes them
// by host and flags rapid switching, per spec §4.4.
type TabSwitchingDetector struct {
	Violations []RawViolation
}

func (d TabSwitchingDetector) Name() string                { return "Tab Switching Detection" }
func (d TabSwitchingDetector) SupportedPlatforms() []string { return nil }
func (d TabSwitchingDetector) RequiresAdmin() bool          { return false }

func (d TabSwitchingDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	violations := filter(d.Violations, tabSwitchingTypes...)
	if len(violations) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "No suspicious tab activity detected"}
	}

	categories := categorize(violations)
	rapid := rapidSwitchCount(violations)

	parts := []string{fmt.Sprintf("%d suspicious tab event(s)", len(violations))}
	var catParts []string
	for _, cat := range categoryOrder {
		if n := categories[cat]; n > 0 {
			catParts = append(catParts, fmt.Sprintf("%s: %d", cat, n))
		}
	}
	if n := categories["other"]; n > 0 {
		catParts = append(catParts, fmt.Sprintf("other: %d", n))
	}
	if len(catParts) > 0 {
		parts = append(parts, "categories: "+strings.Join(catParts, ", "))
	}
	if rapid > 0 {
		parts = append(parts, fmt.Sprintf("ALERT: rapid tab switching detected (%d in window)", rapid))
	}

	return detector.TechniqueResult{
		Name: name, Detected: true, Count: len(violations),
		Details: strings.Join(parts, " | "),
	}
}

func categorize(violations []RawViolation) map[string]int {
	counts := map[string]int{}
	for _, v := range violations {
		counts[categorizeURL(detailString(v, "url"))]++
	}
	return counts
}

// categorizeURL matches the host portion of raw against the communication
// and social domain lists, and falls back to a full-URL substring match
// for the search category's path-qualified patterns ("google.com/search").
func categorizeURL(raw string) string {
	host := strings.ToLower(hostOf(raw))
	full := strings.ToLower(raw)
	for _, cat := range categoryOrder {
		for _, pattern := range urlCategories[cat] {
			if strings.Contains(pattern, "/") {
				if strings.Contains(full, pattern) {
					return cat
				}
				continue
			}
			if strings.Contains(host, pattern) {
				return cat
			}
		}
	}
	return "other"
}

// hostOf returns a URL's host, falling back to the raw string if it
// doesn't parse, so a malformed URL still gets a substring match attempt.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// rapidSwitchCount implements spec §8 item 8: a 5-event sliding window
// ordered by timestamp; returns the largest event count observed in a
// qualifying window (span <= 60s), which is at least 5 and exceeds 5
// when events share the window's edge timestamps, or 0 if fewer than 5
// events exist or no window qualifies.
func rapidSwitchCount(violations []RawViolation) int {
	if len(violations) < 5 {
		return 0
	}

	sorted := make([]RawViolation, len(violations))
	copy(sorted, violations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	max := 0
	for i := 0; i+4 < len(sorted); i++ {
		spanMS := sorted[i+4].Timestamp - sorted[i].Timestamp
		if spanMS <= 60_000 {
			windowStart, windowEnd := sorted[i].Timestamp, sorted[i+4].Timestamp
			count := 0
			for _, v := range sorted {
				if v.Timestamp >= windowStart && v.Timestamp <= windowEnd {
					count++
				}
			}
			if count > max {
				max = count
			}
		}
	}
	if max >= 5 {
		return max
	}
	return 0
}

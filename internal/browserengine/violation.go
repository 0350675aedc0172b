// Package browserengine implements the browser violation engine: it
// ingests extension-emitted RawViolation events accumulated by the
// native-messaging host, applies four per-technique detectors, and
// fuses their outputs under the accumulator-style policy tree from
// spec §4.4.
package browserengine

// ViolationType is the discriminator the extension sets on each
// RawViolation, per spec §3/§6.
type ViolationType string

const (
	TypeScreenShareDetected       ViolationType = "SCREEN_SHARE_DETECTED"
	TypeScreenShareStopped        ViolationType = "SCREEN_SHARE_STOPPED"
	TypeMaliciousExtension        ViolationType = "MALICIOUS_EXTENSION_DETECTED"
	TypeForeignExtensionScript    ViolationType = "FOREIGN_EXTENSION_SCRIPT"
	TypeExtensionElementInjected  ViolationType = "EXTENSION_ELEMENT_INJECTED"
	TypeSuspiciousOverlay         ViolationType = "SUSPICIOUS_OVERLAY"
	TypeLargeCodePaste            ViolationType = "LARGE_CODE_PASTE"
	TypeProgrammaticInput         ViolationType = "PROGRAMMATIC_INPUT"
	TypeSuspiciousTabActivated    ViolationType = "SUSPICIOUS_TAB_ACTIVATED"
	TypeSuspiciousTabAlreadyOpen  ViolationType = "SUSPICIOUS_TAB_ALREADY_OPEN"
	TypeSuspiciousTabNavigation   ViolationType = "SUSPICIOUS_TAB_NAVIGATION"
)

// RawViolation is a single event emitted by the extension and appended
// to violations.json by the native host, per spec §3.
type RawViolation struct {
	Type       ViolationType  `json:"type"`
	Timestamp  int64          `json:"timestamp"` // ms since epoch, extension clock
	DetectedAt string         `json:"detected_at,omitempty"` // ISO-8601, host-assigned
	Details    map[string]any `json:"details,omitempty"`
}

// filter returns every violation whose Type is in types, in original order.
func filter(violations []RawViolation, types ...ViolationType) []RawViolation {
	want := make(map[ViolationType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []RawViolation
	for _, v := range violations {
		if want[v.Type] {
			out = append(out, v)
		}
	}
	return out
}

// detailString reads a string field out of a violation's Details map.
func detailString(v RawViolation, key string) string {
	if v.Details == nil {
		return ""
	}
	s, _ := v.Details[key].(string)
	return s
}

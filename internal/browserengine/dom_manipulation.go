package browserengine

import (
	"context"
	"fmt"
	"strings"

	"integritywatch/internal/detector"
)

// domManipulationTypes are matched by DOMManipulationDetector and
// reported in this order, per spec §4.4.
var domManipulationTypes = []ViolationType{
	TypeForeignExtensionScript,
	TypeExtensionElementInjected,
	TypeSuspiciousOverlay,
	TypeLargeCodePaste,
	TypeProgrammaticInput,
}

var domManipulationLabels = map[ViolationType]string{
	TypeForeignExtensionScript:   "foreign script(s)",
	TypeExtensionElementInjected: "injected element(s)",
	TypeSuspiciousOverlay:        "overlay(s)",
	TypeLargeCodePaste:           "large paste(s)",
	TypeProgrammaticInput:        "programmatic input(s)",
}

// DOMManipulationDetector matches the five extension-injected-script
// event types, per spec §4.4.
type DOMManipulationDetector struct {
	Violations []RawViolation
}

func (d DOMManipulationDetector) Name() string                { return "DOM Manipulation Detection" }
func (d DOMManipulationDetector) SupportedPlatforms() []string { return nil }
func (d DOMManipulationDetector) RequiresAdmin() bool          { return false }

func (d DOMManipulationDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	violations := filter(d.Violations, domManipulationTypes...)
	if len(violations) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "No DOM manipulation detected"}
	}

	counts := map[ViolationType]int{}
	for _, v := range violations {
		counts[v.Type]++
	}

	var parts []string
	for _, t := range domManipulationTypes {
		if n := counts[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, domManipulationLabels[t]))
		}
	}

	return detector.TechniqueResult{
		Name: name, Detected: true, Count: len(violations),
		Details: "DOM manipulation detected: " + strings.Join(parts, ", "),
	}
}

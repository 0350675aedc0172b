package browserengine

import (
	"fmt"
	"strings"

	"context"

	"integritywatch/internal/detector"
)

// MaliciousExtensionDetector matches MALICIOUS_EXTENSION_DETECTED events.
type MaliciousExtensionDetector struct {
	Violations []RawViolation
}

func (d MaliciousExtensionDetector) Name() string                { return "Malicious Extension Detection" }
func (d MaliciousExtensionDetector) SupportedPlatforms() []string { return nil }
func (d MaliciousExtensionDetector) RequiresAdmin() bool          { return false }

func (d MaliciousExtensionDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	violations := filter(d.Violations, TypeMaliciousExtension)
	if len(violations) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "No suspicious extensions detected"}
	}

	names := make([]string, 0, len(violations))
	for _, v := range violations {
		extName := detailString(v, "extensionName")
		if extName == "" {
			extName = "Unknown"
		}
		names = append(names, extName)
	}

	return detector.TechniqueResult{
		Name: name, Detected: true, Count: len(violations),
		Details: fmt.Sprintf("Detected %d suspicious extension(s): %s", len(violations), strings.Join(names, ", ")),
		Data:    map[string]any{"extensions": names},
	}
}

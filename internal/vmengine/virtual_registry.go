package vmengine

import (
	"context"
	"fmt"
	"strings"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// VirtualRegistryDetector canonicalizes the well-known `\REGISTRY\USER`
// key; sandboxes that redirect the registry root resolve it to a
// different path (e.g. a per-sandbox user hive).
type VirtualRegistryDetector struct {
	Registry platform.RegistryProber
}

func (d VirtualRegistryDetector) Name() string                { return "Virtual Registry Detection" }
func (d VirtualRegistryDetector) SupportedPlatforms() []string { return []string{"windows"} }
func (d VirtualRegistryDetector) RequiresAdmin() bool          { return false }

const canonicalRegistryUserKey = `REGISTRY\USER`

func (d VirtualRegistryDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	canonical, err := d.Registry.CanonicalPath(ctx, canonicalRegistryUserKey)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}

	if strings.EqualFold(canonical, canonicalRegistryUserKey) {
		return detector.TechniqueResult{
			Name: name, Detected: false,
			Details: fmt.Sprintf("Registry root canonicalizes to %s as expected", canonical),
		}
	}

	return detector.TechniqueResult{
		Name: name, Detected: true,
		Details: fmt.Sprintf("Registry root canonicalized to %s, expected %s", canonical, canonicalRegistryUserKey),
	}
}

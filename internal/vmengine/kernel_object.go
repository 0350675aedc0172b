package vmengine

import (
	"context"
	"fmt"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// KernelObjectDetector attempts to open a fixed set of guest-integration
// device/pipe paths that only exist inside the matching hypervisor.
type KernelObjectDetector struct {
	KernelObject platform.KernelObjectProber
}

func (d KernelObjectDetector) Name() string                { return "Kernel Object Detection" }
func (d KernelObjectDetector) SupportedPlatforms() []string { return []string{"windows"} }
func (d KernelObjectDetector) RequiresAdmin() bool          { return false }

func (d KernelObjectDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	opened, found, err := d.KernelObject.Probe(ctx, kernelObjectPaths)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}
	if found {
		return detector.TechniqueResult{Name: name, Detected: true, Details: fmt.Sprintf("Opened guest-integration object %s", opened)}
	}
	return detector.TechniqueResult{Name: name, Detected: false, Details: "No hypervisor guest-integration objects found"}
}

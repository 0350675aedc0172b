package vmengine

import (
	"context"
	"fmt"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// PCIDetector enumerates PCI devices and matches their (vendor, device)
// pairs, then vendor alone, against known hypervisor device tables.
type PCIDetector struct {
	PCI platform.PCIProber
}

func (d PCIDetector) Name() string                { return "PCI Device Detection" }
func (d PCIDetector) SupportedPlatforms() []string { return []string{"windows", "linux"} }
func (d PCIDetector) RequiresAdmin() bool          { return false }

func (d PCIDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	devices, err := d.PCI.Devices(ctx)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}
	if len(devices) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Error: "Unable to enumerate PCI devices on this system"}
	}

	for _, dev := range devices {
		if label, ok := vmPCISignatures[dev]; ok {
			return detector.TechniqueResult{
				Name: name, Detected: true,
				Details: fmt.Sprintf("Found PCI device %04X:%04X for %s", dev.Vendor, dev.Device, label),
			}
		}
		if label, ok := vmPCIVendorIDs[dev.Vendor]; ok {
			return detector.TechniqueResult{
				Name: name, Detected: true,
				Details: fmt.Sprintf("Found vendor ID %04X for %s", dev.Vendor, label),
			}
		}
	}

	return detector.TechniqueResult{Name: name, Detected: false, Details: "No VM vendor ID or device ID found in PCI devices"}
}

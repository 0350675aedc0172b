package vmengine

import (
	"context"
	"fmt"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// HypervisorBitDetector checks bit 31 of CPUID leaf 1's ECX register.
// A set bit alone is ambiguous — Hyper-V hosts and WSL set it too — so
// a positive hit additionally requires leaf 0x40000000 to report a
// hypervisor vendor (EAX >= 0x40000000), per spec §4.2 and scenario S2.
type HypervisorBitDetector struct {
	CPUID platform.CPUIDProber
}

func (d HypervisorBitDetector) Name() string              { return "CPUID Hypervisor Bit" }
func (d HypervisorBitDetector) SupportedPlatforms() []string { return nil }
func (d HypervisorBitDetector) RequiresAdmin() bool        { return false }

func (d HypervisorBitDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	leaf1, err := d.CPUID.Query(1, 0)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}

	hypervisorBit := (leaf1.ECX >> 31) & 1
	if hypervisorBit == 0 {
		return detector.TechniqueResult{
			Name: name, Detected: false,
			Details: "Hypervisor present bit is CLEAR (ECX bit 31 = 0)",
		}
	}

	leaf0, err := d.CPUID.Query(0x40000000, 0)
	if err != nil || leaf0.EAX < 0x40000000 {
		return detector.TechniqueResult{
			Name: name, Detected: false,
			Details: "Hypervisor bit set but no VM (Hyper-V host or WSL)",
		}
	}

	return detector.TechniqueResult{
		Name: name, Detected: true,
		Details: fmt.Sprintf("Hypervisor present bit is SET (CPUID leaf 1, ECX bit 31 = 1; leaf 0x40000000 EAX=0x%08X)", leaf0.EAX),
	}
}

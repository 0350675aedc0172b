// Package vmengine implements the VM/sandbox detection pipeline: seven
// hardware and firmware signals fused under a tiered decision tree.
package vmengine

import (
	"context"
	"log/slog"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
	"integritywatch/internal/result"
)

// Engine runs every VM/sandbox detector in registration order and
// fuses their tiered outcomes into one verdict.
type Engine struct {
	log       *slog.Logger
	detectors []detector.Detector
}

// New builds the engine with its fixed detector set wired to the
// supplied probe bundle. Detector order is preserved in the result's
// Items list, per spec §5's ordering guarantee.
func New(log *slog.Logger, probes *platform.Probes) *Engine {
	return &Engine{
		log: log,
		detectors: []detector.Detector{
			HypervisorBitDetector{CPUID: probes.CPUID},
			VendorStringDetector{CPUID: probes.CPUID},
			VirtualRegistryDetector{Registry: probes.Registry},
			FirmwareDetector{Firmware: probes.Firmware},
			PCIDetector{PCI: probes.PCI},
			KernelObjectDetector{KernelObject: probes.KernelObject},
			MACAddressDetector{NetInterfaces: probes.NetInterfaces},
		},
	}
}

// Run performs the one-shot baseline scan across every VM detector.
func (e *Engine) Run(ctx context.Context) result.DetectionResult {
	items := make([]detector.TechniqueResult, 0, len(e.detectors))
	for _, d := range e.detectors {
		r := detector.SafeScan(ctx, d)
		r.Tier = tierFor(r.Name)
		if r.Failed() {
			e.log.WarnContext(ctx, "vm detector failed", "detector", r.Name, "error", r.Error)
		}
		items = append(items, r)
	}

	critical, high, medium, low := result.Tally(items)
	verdict, reason := fuse(items, critical, high, low)

	return result.DetectionResult{
		Items:    items,
		Verdict:  verdict,
		Reason:   reason,
		Critical: critical,
		High:     high,
		Medium:   medium,
		Low:      low,
	}
}

// fuse applies spec §4.2's decision tree: any CRITICAL blocks outright
// (with a reason specialized by detector coexistence), then any HIGH
// blocks, then a lone LOW only flags for manual review. This follows
// the "any HIGH ⇒ BLOCK" source tree per spec §9's resolved ambiguity.
func fuse(items []detector.TechniqueResult, critical, high, low int) (result.Verdict, string) {
	if critical > 0 {
		if sandboxDetected(items) {
			return result.VerdictBlock, "Sandbox isolation detected"
		}
		switch {
		case high > 0 && low > 0:
			return result.VerdictBlock, "Standard VM (no evasion)"
		case high > 0 && low == 0:
			return result.VerdictBlock, "VM (MAC spoofed)"
		case high == 0 && low == 0:
			return result.VerdictBlock, "High-sophistication evasion (firmware + MAC hidden)"
		default:
			return result.VerdictBlock, "VM (CPU level)"
		}
	}

	if high > 0 {
		if low > 0 {
			return result.VerdictBlock, "Standard VM (no evasion)"
		}
		return result.VerdictBlock, "Elite evasion attempt (CPU & MAC hidden, firmware exposed)"
	}

	if low > 0 {
		return result.VerdictFlag, "Suspicious environment (manual review)"
	}

	return result.VerdictAllow, "System appears clean"
}

func sandboxDetected(items []detector.TechniqueResult) bool {
	for _, item := range items {
		if item.Name == "Virtual Registry Detection" && item.Detected {
			return true
		}
	}
	return false
}

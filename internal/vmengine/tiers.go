package vmengine

import "integritywatch/internal/detector"

// tierMapping follows the CPUID/registry=CRITICAL, firmware/PCI/kernel-
// object=HIGH, MAC=LOW table from spec §4.2, resolving the ambiguity
// noted in spec §9.
var tierMapping = map[string]detector.Tier{
	"CPUID Hypervisor Bit":       detector.TierCritical,
	"CPUID Vendor String":        detector.TierCritical,
	"Virtual Registry Detection": detector.TierCritical,
	"Firmware Table Scan":        detector.TierHigh,
	"PCI Device Detection":       detector.TierHigh,
	"Kernel Object Detection":    detector.TierHigh,
	"MAC Address Check":          detector.TierLow,
}

func tierFor(name string) detector.Tier {
	if t, ok := tierMapping[name]; ok {
		return t
	}
	return detector.TierUnknown
}

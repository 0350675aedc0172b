package vmengine

import (
	"context"
	"fmt"
	"strings"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// VendorStringDetector reads the hypervisor vendor ID string exposed at
// CPUID leaves 0x40000000 and 0x40000100, comparing it against a known
// vendor table and a looser keyword fallback.
type VendorStringDetector struct {
	CPUID platform.CPUIDProber
}

func (d VendorStringDetector) Name() string                { return "CPUID Vendor String" }
func (d VendorStringDetector) SupportedPlatforms() []string { return nil }
func (d VendorStringDetector) RequiresAdmin() bool          { return false }

func (d VendorStringDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	for _, leaf := range []uint32{0x40000000, 0x40000100} {
		vendor, ok := d.readVendorString(leaf)
		if !ok {
			continue
		}
		if match, label := matchVMVendor(vendor); match {
			return detector.TechniqueResult{
				Name: name, Detected: true,
				Details: fmt.Sprintf("VM vendor '%s' detected at CPUID leaf 0x%08X: '%s'", label, leaf, vendor),
			}
		}
	}
	return detector.TechniqueResult{Name: name, Detected: false, Details: "No VM vendor strings found in CPUID"}
}

// readVendorString decodes the 12-character vendor ID CPUID packs into
// EBX, ECX, EDX (in that register order) at a hypervisor-vendor leaf.
func (d VendorStringDetector) readVendorString(leaf uint32) (string, bool) {
	r, err := d.CPUID.Query(leaf, 0)
	if err != nil {
		return "", false
	}
	var b [12]byte
	putLE32(b[0:4], r.EBX)
	putLE32(b[4:8], r.ECX)
	putLE32(b[8:12], r.EDX)
	s := strings.TrimRight(string(b[:]), "\x00")
	if s == "" {
		return "", false
	}
	return s, true
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func matchVMVendor(vendor string) (bool, string) {
	for sig, label := range vmVendorStrings {
		if strings.Contains(sig, vendor) || strings.Contains(vendor, sig) {
			return true, label
		}
	}
	lower := strings.ToLower(vendor)
	for _, kw := range vmVendorKeywords {
		if strings.Contains(lower, kw) {
			return true, vendor
		}
	}
	return false, ""
}

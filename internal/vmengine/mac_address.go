package vmengine

import (
	"context"
	"fmt"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// MACAddressDetector compares every non-loopback interface's OUI
// against a hard-coded hypervisor vendor table. Weakest signal of the
// seven — cloud and bare-metal NICs can coincidentally share a prefix —
// hence its LOW tier.
type MACAddressDetector struct {
	NetInterfaces platform.NetInterfaceProber
}

func (d MACAddressDetector) Name() string                { return "MAC Address Check" }
func (d MACAddressDetector) SupportedPlatforms() []string { return []string{"windows", "linux", "darwin"} }
func (d MACAddressDetector) RequiresAdmin() bool          { return false }

func (d MACAddressDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	ifaces, err := d.NetInterfaces.Interfaces(ctx)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}
	if len(ifaces) == 0 {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "No network interfaces found", Error: "Could not enumerate MAC addresses"}
	}

	for _, iface := range ifaces {
		if len(iface.MAC) < 8 {
			continue
		}
		oui := iface.MAC[:8]
		if vendor, ok := vmMACPrefixes[oui]; ok {
			return detector.TechniqueResult{
				Name: name, Detected: true,
				Details: fmt.Sprintf("VM-specific MAC address detected: %s (OUI: %s, Vendor: %s)", iface.MAC, oui, vendor),
			}
		}
	}

	return detector.TechniqueResult{
		Name: name, Detected: false,
		Details: fmt.Sprintf("All %d network adapters have non-VM MAC addresses", len(ifaces)),
	}
}

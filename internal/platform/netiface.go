package platform

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// StdNetInterfaceProber enumerates non-loopback interfaces with the
// standard library; MAC enumeration needs no OS-specific FFI.
type StdNetInterfaceProber struct{}

// Interfaces implements NetInterfaceProber.
func (StdNetInterfaceProber) Interfaces(ctx context.Context) ([]NetInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("platform: enumerate interfaces: %w", err)
	}

	out := make([]NetInterface, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		mac := iface.HardwareAddr.String()
		if mac == "" {
			continue
		}
		out = append(out, NetInterface{Name: iface.Name, MAC: strings.ToUpper(mac)})
	}
	return out, nil
}

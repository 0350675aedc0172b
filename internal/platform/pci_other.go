//go:build !linux

package platform

import (
	"context"
	"errors"
)

var errPCIUnsupported = errors.New("platform: pci probe not available on this build")

// UnsupportedPCIProber is used on platforms without a sysfs-style PCI
// enumeration path wired in. Windows PCI enumeration goes through
// SetupAPI/CfgMgr32, which sits outside the core per spec §1.
type UnsupportedPCIProber struct{}

func newPCIProber() PCIProber { return UnsupportedPCIProber{} }

// Devices implements PCIProber.
func (UnsupportedPCIProber) Devices(ctx context.Context) ([]PCIDevice, error) {
	return nil, errPCIUnsupported
}

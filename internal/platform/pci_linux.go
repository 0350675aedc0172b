//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const pciDevicesDir = "/sys/bus/pci/devices"

// LinuxPCIProber enumerates PCI devices from sysfs, reading the vendor
// and device ID files the kernel exposes per device directory.
type LinuxPCIProber struct{}

func newPCIProber() PCIProber { return LinuxPCIProber{} }

// Devices implements PCIProber.
func (LinuxPCIProber) Devices(ctx context.Context) ([]PCIDevice, error) {
	entries, err := os.ReadDir(pciDevicesDir)
	if err != nil {
		return nil, fmt.Errorf("platform: read pci devices: %w", err)
	}

	out := make([]PCIDevice, 0, len(entries))
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		dir := filepath.Join(pciDevicesDir, e.Name())
		vendor, err := readHexID(filepath.Join(dir, "vendor"))
		if err != nil {
			continue
		}
		device, err := readHexID(filepath.Join(dir, "device"))
		if err != nil {
			continue
		}
		out = append(out, PCIDevice{Vendor: vendor, Device: device})
	}
	return out, nil
}

func readHexID(path string) (uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

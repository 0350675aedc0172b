//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	acpiTablesDir = "/sys/firmware/acpi/tables"
	dmiClassDir   = "/sys/class/dmi/id"
)

// LinuxFirmwareProber reads ACPI tables and DMI/SMBIOS string fields
// exposed by the kernel under /sys, with no CGO or raw memory access.
type LinuxFirmwareProber struct{}

func newFirmwareProber() FirmwareProber { return LinuxFirmwareProber{} }

// Tables implements FirmwareProber.
func (LinuxFirmwareProber) Tables(ctx context.Context) ([]FirmwareTable, error) {
	entries, err := os.ReadDir(acpiTablesDir)
	if err != nil {
		return nil, fmt.Errorf("platform: read acpi tables: %w", err)
	}

	out := make([]FirmwareTable, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}
		data, err := os.ReadFile(filepath.Join(acpiTablesDir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, FirmwareTable{ID: e.Name(), Bytes: data})
	}
	return out, nil
}

// DMIFields implements FirmwareProber, reading the flat string files under
// /sys/class/dmi/id (sys_vendor, product_name, bios_vendor, ...).
func (LinuxFirmwareProber) DMIFields(ctx context.Context) (map[string]string, error) {
	wanted := []string{"sys_vendor", "product_name", "bios_vendor", "board_vendor", "chassis_vendor"}
	out := make(map[string]string, len(wanted))
	for _, name := range wanted {
		data, err := os.ReadFile(filepath.Join(dmiClassDir, name))
		if err != nil {
			continue
		}
		out[name] = trimNull(data)
	}
	return out, nil
}

func trimNull(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == 0) {
		b = b[:len(b)-1]
	}
	return string(b)
}

//go:build !linux

package platform

import (
	"context"
	"errors"
)

var errFirmwareUnsupported = errors.New("platform: firmware probe not available on this build")

// UnsupportedFirmwareProber reports a uniform "not supported" error on
// platforms with no portable firmware-table reader wired in yet. Windows
// SMBIOS access goes through WMI, which the detector layer treats as an
// out-of-core FFI concern per spec §1.
type UnsupportedFirmwareProber struct{}

func newFirmwareProber() FirmwareProber { return UnsupportedFirmwareProber{} }

// Tables implements FirmwareProber.
func (UnsupportedFirmwareProber) Tables(ctx context.Context) ([]FirmwareTable, error) {
	return nil, errFirmwareUnsupported
}

// DMIFields implements FirmwareProber.
func (UnsupportedFirmwareProber) DMIFields(ctx context.Context) (map[string]string, error) {
	return nil, errFirmwareUnsupported
}

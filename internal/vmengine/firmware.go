package vmengine

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// vmBrandSignatures are case-insensitive substrings found in firmware
// tables generated by a hypervisor's BIOS/SMBIOS implementation.
var vmBrandSignatures = []string{
	"parallels software", "parallels(r)", "innotek", "oracle",
	"virtualbox", "vbox", "vmware, inc.", "vmware", "vmw0003",
	"qemu", "pc-q35", "q35 +", "fwcf", "bochs", "bxpc", "ovmf",
	"edk ii unknown", "waet", "s3 corp.", "virtual machine", "vs2005r2", "xen",
}

const (
	hardenerMarker = "777777"
	amdShort       = "advanced micro devices"
	amdFull        = "advanced micro devices, inc."
	hpetACPIID     = "HPET"
)

// FirmwareDetector scans ACPI (and, where available, SMBIOS/DMI)
// firmware tables for hypervisor brand strings, hardening-tool
// artifacts, and FADT irregularities that hide a hypervisor poorly.
type FirmwareDetector struct {
	Firmware platform.FirmwareProber
}

func (d FirmwareDetector) Name() string                { return "Firmware Table Scan" }
func (d FirmwareDetector) SupportedPlatforms() []string { return []string{"windows", "linux"} }
func (d FirmwareDetector) RequiresAdmin() bool          { return false }

func (d FirmwareDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()

	tables, err := d.Firmware.Tables(ctx)
	if err != nil {
		return d.fallbackToDMI(ctx, err)
	}

	foundHPET := false
	for _, t := range tables {
		if t.ID == hpetACPIID {
			foundHPET = true
		}
		if detected, details := scanFirmwareTable(t.Bytes); detected {
			return detector.TechniqueResult{Name: name, Detected: true, Details: details}
		}
	}

	if !foundHPET {
		return detector.TechniqueResult{Name: name, Detected: false, Details: "HPET ACPI table absent"}
	}
	return detector.TechniqueResult{Name: name, Detected: false, Details: "System is clean in firmware tables"}
}

func (d FirmwareDetector) fallbackToDMI(ctx context.Context, scanErr error) detector.TechniqueResult {
	name := d.Name()
	fields, err := d.Firmware.DMIFields(ctx)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: fmt.Sprintf("firmware table scan failed (%v), DMI fallback failed (%v)", scanErr, err)}
	}

	var detectedIn []string
	for key, value := range fields {
		lower := strings.ToLower(value)
		for _, kw := range dmiVMKeywords {
			if strings.Contains(lower, kw) {
				detectedIn = append(detectedIn, fmt.Sprintf("%s: %s", key, value))
				break
			}
		}
	}

	if len(detectedIn) > 0 {
		return detector.TechniqueResult{
			Name: name, Detected: true,
			Details: "VM indicators found - " + strings.Join(detectedIn, ", "),
		}
	}
	return detector.TechniqueResult{
		Name: name, Detected: false,
		Details: fmt.Sprintf("No VM signatures in firmware (%d fields checked)", len(fields)),
	}
}

// scanFirmwareTable applies the brand, hardener-marker, AMD-spoof, and
// FADT latency checks from spec §4.2 to one table's raw bytes.
func scanFirmwareTable(table []byte) (bool, string) {
	lower := bytes.ToLower(table)

	for _, sig := range vmBrandSignatures {
		if !bytes.Contains(lower, []byte(sig)) {
			continue
		}
		if sig == "xen" && bytes.Contains(lower, []byte("pxen")) {
			continue
		}
		return true, fmt.Sprintf("VM brand signature found: %q", sig)
	}

	if len(table) < 36 {
		return false, ""
	}

	oemID := string(table[10:16])
	oemTableID := string(table[16:24])
	if strings.Contains(oemID, hardenerMarker) || strings.Contains(oemTableID, hardenerMarker) {
		return true, "VMwareHardenedLoader artifact found in OEMID/OEMTableID"
	}

	signature := string(table[0:4])

	hasShort := bytes.Contains(lower, []byte(amdShort))
	hasFull := bytes.Contains(lower, []byte(amdFull))
	if hasShort && !hasFull {
		return true, "Spoofed AMD manufacturer string detected (short form without Inc.)"
	}

	if signature == "FACP" {
		headerLen := binary.LittleEndian.Uint32(table[4:8])
		if int(headerLen) > len(table) {
			return true, fmt.Sprintf("Corrupt ACPI header in FADT: declared length (%d) > actual length (%d)", headerLen, len(table))
		}
		if len(table) < 84 {
			return true, fmt.Sprintf("FADT buffer too small: %d bytes (expected >= 84)", len(table))
		}
		pLvl2Lat := binary.LittleEndian.Uint16(table[80:82])
		pLvl3Lat := binary.LittleEndian.Uint16(table[82:84])
		if pLvl2Lat == 0x0FFF || pLvl3Lat == 0x0FFF {
			return true, fmt.Sprintf("Invalid FADT C-state latency values: P_Lvl2=0x%04X, P_Lvl3=0x%04X", pLvl2Lat, pLvl3Lat)
		}
	}

	return false, ""
}

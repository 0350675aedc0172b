// Package platform declares the typed query interfaces the detection
// engines use to reach the operating system, plus implementations for
// the probes that are plain, portable I/O (Linux ACPI/PCI reads, MAC
// enumeration, process/connection enumeration via gopsutil).
//
// Per spec §1, the platform probes are external collaborators specified
// only at their interface to the core; probes needing genuine low-level
// FFI (CPUID leaf execution, Windows registry canonicalization, WMI)
// either get a narrow Windows-only implementation or return a
// "platform: <probe> probe not available on this build" error, which
// the detectors report as a probe failure instead of a detection.
package platform

import "context"

// CPUIDResult is the four-register tuple returned by a CPUID leaf query.
type CPUIDResult struct {
	EAX, EBX, ECX, EDX uint32
}

// CPUIDProber queries CPUID leaves.
type CPUIDProber interface {
	Query(leaf, subleaf uint32) (CPUIDResult, error)
}

// FirmwareTable is a named firmware table's raw bytes.
type FirmwareTable struct {
	ID    string // e.g. "FACP", "HPET" on ACPI; provider/field name on SMBIOS
	Bytes []byte
}

// FirmwareProber enumerates and reads firmware (ACPI/SMBIOS/DMI) tables.
type FirmwareProber interface {
	// Tables returns every firmware table available, by ID.
	Tables(ctx context.Context) ([]FirmwareTable, error)
	// DMIFields returns DMI/WMI string fields (manufacturer, product,
	// version) used as a fallback when table scanning fails.
	DMIFields(ctx context.Context) (map[string]string, error)
}

// PCIDevice is a (vendor, device) ID pair.
type PCIDevice struct {
	Vendor uint16
	Device uint16
}

// PCIProber enumerates PCI devices.
type PCIProber interface {
	Devices(ctx context.Context) ([]PCIDevice, error)
}

// KernelObjectProber attempts to open a fixed set of device/pipe paths.
type KernelObjectProber interface {
	// Probe returns the first path that could be opened, and whether any
	// path succeeded.
	Probe(ctx context.Context, paths []string) (opened string, found bool, err error)
}

// RegistryProber canonicalizes a registry key path (Windows only).
type RegistryProber interface {
	CanonicalPath(ctx context.Context, key string) (string, error)
}

// NetInterface is a non-loopback network interface and its MAC address.
type NetInterface struct {
	Name string
	MAC  string // colon-separated hex, uppercase
}

// NetInterfaceProber enumerates network interfaces.
type NetInterfaceProber interface {
	Interfaces(ctx context.Context) ([]NetInterface, error)
}

// ProcessInfo is a running process's identity.
type ProcessInfo struct {
	PID  int
	Name string
	Path string
}

// ProcessProber enumerates running processes.
type ProcessProber interface {
	Processes(ctx context.Context) ([]ProcessInfo, error)
}

// Connection is a single TCP connection belonging to a process.
type Connection struct {
	PID        int
	LocalPort  int
	RemotePort int
	RemoteAddr string
	State      string // "ESTABLISHED", "LISTEN", ...
}

// ConnectionProber lists TCP connections for a given process.
type ConnectionProber interface {
	Connections(ctx context.Context, pid int) ([]Connection, error)
}

// ReverseDNSProber resolves an IPv4 address to a hostname.
type ReverseDNSProber interface {
	Lookup(ctx context.Context, addr string) (string, error)
}

// RemoteSessionProber answers whether the current session is a Windows
// Remote Desktop session. The Windows implementation checks
// GetSystemMetrics(SM_REMOTESESSION) only; it does not query the WTS
// session protocol.
type RemoteSessionProber interface {
	IsRemoteSession(ctx context.Context) (bool, error)
}

// Probes bundles every probe the detection engines consume. A zero-value
// field means that probe is unavailable on this build/platform; detectors
// treat a nil prober the same as a probe call failing, per spec §7.
type Probes struct {
	CPUID          CPUIDProber
	Firmware       FirmwareProber
	PCI            PCIProber
	KernelObject   KernelObjectProber
	Registry       RegistryProber
	NetInterfaces  NetInterfaceProber
	Processes      ProcessProber
	Connections    ConnectionProber
	ReverseDNS     ReverseDNSProber
	RemoteSession  RemoteSessionProber
}

package vmengine

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
	"integritywatch/internal/result"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubCPUID struct {
	leaf1ECXBit31 bool
	hvVendorEAX   uint32
}

func (s stubCPUID) Query(leaf, subleaf uint32) (platform.CPUIDResult, error) {
	if leaf == 1 {
		var ecx uint32
		if s.leaf1ECXBit31 {
			ecx = 1 << 31
		}
		return platform.CPUIDResult{ECX: ecx}, nil
	}
	if leaf == 0x40000000 {
		return platform.CPUIDResult{EAX: s.hvVendorEAX}, nil
	}
	return platform.CPUIDResult{}, nil
}

type stubRegistry struct{ canonical string }

func (s stubRegistry) CanonicalPath(ctx context.Context, key string) (string, error) {
	return s.canonical, nil
}

type stubFirmware struct {
	tables []platform.FirmwareTable
	err    error
}

func (s stubFirmware) Tables(ctx context.Context) ([]platform.FirmwareTable, error) {
	return s.tables, s.err
}
func (s stubFirmware) DMIFields(ctx context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

type stubPCI struct{ devices []platform.PCIDevice }

func (s stubPCI) Devices(ctx context.Context) ([]platform.PCIDevice, error) { return s.devices, nil }

type stubKernelObject struct{}

func (stubKernelObject) Probe(ctx context.Context, paths []string) (string, bool, error) {
	return "", false, nil
}

type stubNetInterfaces struct{ ifaces []platform.NetInterface }

func (s stubNetInterfaces) Interfaces(ctx context.Context) ([]platform.NetInterface, error) {
	return s.ifaces, nil
}

func baseProbes() *platform.Probes {
	return &platform.Probes{
		CPUID:         stubCPUID{},
		Registry:      stubRegistry{canonical: `REGISTRY\USER`},
		Firmware:      stubFirmware{},
		PCI:           stubPCI{},
		KernelObject:  stubKernelObject{},
		NetInterfaces: stubNetInterfaces{},
	}
}

func TestEngineCleanSystemAllows(t *testing.T) {
	e := New(discardLogger(), baseProbes())
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictAllow, r.Verdict)
	assert.Equal(t, 0, r.Critical+r.High+r.Low)
}

// S2: hypervisor bit set but no vendor leaf (Hyper-V host or WSL false positive).
func TestEngineSuppressesHyperVHostFalsePositive(t *testing.T) {
	probes := baseProbes()
	probes.CPUID = stubCPUID{leaf1ECXBit31: true, hvVendorEAX: 0}
	e := New(discardLogger(), probes)
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictAllow, r.Verdict)
}

// S3: VirtualBox MAC + VirtualBox PCI device -> BLOCK "Standard VM (no evasion)".
func TestEngineVirtualBoxMACAndPCI(t *testing.T) {
	probes := baseProbes()
	probes.NetInterfaces = stubNetInterfaces{ifaces: []platform.NetInterface{{Name: "eth0", MAC: "08:00:27:11:22:33"}}}
	probes.PCI = stubPCI{devices: []platform.PCIDevice{{Vendor: 0x80EE, Device: 0xCAFE}}}
	e := New(discardLogger(), probes)
	r := e.Run(context.Background())
	require.Equal(t, result.VerdictBlock, r.Verdict)
	assert.Equal(t, "Standard VM (no evasion)", r.Reason)
}

// S4: virtual registry mismatch -> BLOCK "Sandbox isolation detected".
// VirtualRegistryDetector is gated to windows-only in SafeScan, so this
// exercises the detector and the fusion tree directly rather than
// through Engine.Run, which would skip it on non-Windows test hosts.
func TestEngineSandboxedRegistryMismatch(t *testing.T) {
	d := VirtualRegistryDetector{Registry: stubRegistry{canonical: `REGISTRY\USER\S-1-5-21\Sandbox_abc`}}
	res := d.Scan(context.Background())
	res.Tier = tierFor(res.Name)
	require.True(t, res.Detected)

	verdict, reason := fuse([]detector.TechniqueResult{res}, 1, 0, 0)
	assert.Equal(t, result.VerdictBlock, verdict)
	assert.Equal(t, "Sandbox isolation detected", reason)
}

func TestEngineAnyHighAloneBlocks(t *testing.T) {
	probes := baseProbes()
	probes.PCI = stubPCI{devices: []platform.PCIDevice{{Vendor: 0x15AD, Device: 0x0405}}}
	e := New(discardLogger(), probes)
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictBlock, r.Verdict)
}

func TestEngineLowAloneFlags(t *testing.T) {
	probes := baseProbes()
	probes.NetInterfaces = stubNetInterfaces{ifaces: []platform.NetInterface{{Name: "eth0", MAC: "52:54:00:12:34:56"}}}
	e := New(discardLogger(), probes)
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictFlag, r.Verdict)
}

func TestEnginePreservesDetectorOrder(t *testing.T) {
	e := New(discardLogger(), baseProbes())
	r := e.Run(context.Background())
	require.Len(t, r.Items, 7)
	assert.Equal(t, "CPUID Hypervisor Bit", r.Items[0].Name)
	assert.Equal(t, "MAC Address Check", r.Items[6].Name)
}

package platform

// NewProbes assembles the bundle of probes available on the running
// build: portable I/O probes everywhere, FFI-backed probes only where
// the host OS supports them, and the uniform "not supported" stub
// elsewhere. Detectors see a working Probes value regardless of OS and
// rely on SafeScan's gating and each probe's own error to skip cleanly.
func NewProbes() *Probes {
	return &Probes{
		CPUID:         UnsupportedCPUIDProber{},
		Firmware:      newFirmwareProber(),
		PCI:           newPCIProber(),
		KernelObject:  StdKernelObjectProber{},
		Registry:      newRegistryProber(),
		NetInterfaces: StdNetInterfaceProber{},
		Processes:     GopsutilProcessProber{},
		Connections:   GopsutilConnectionProber{},
		ReverseDNS:    NewRateLimitedReverseDNS(5, 10),
		RemoteSession: newRemoteSessionProber(),
	}
}

package platform

import (
	"errors"
)

var errCPUIDUnsupported = errors.New("platform: cpuid probe not available on this build")

// UnsupportedCPUIDProber reports a uniform error for every leaf query.
// CPUID leaf execution requires inline assembly or CGO per core and
// sits outside the core per spec §1; the hypervisor-bit and vendor-string
// detectors in the VM engine degrade to a graceful skip against this
// prober rather than fail the scan.
type UnsupportedCPUIDProber struct{}

// Query implements CPUIDProber.
func (UnsupportedCPUIDProber) Query(leaf, subleaf uint32) (CPUIDResult, error) {
	return CPUIDResult{}, errCPUIDUnsupported
}

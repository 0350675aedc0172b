package remoteengine

import (
	"context"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
)

// RDPSessionDetector checks whether the current session is itself a
// Windows Remote Desktop session, per spec §4.3. Scan and Monitor make
// the same single RemoteSessionProber call, which on Windows checks
// GetSystemMetrics(SM_REMOTESESSION) only; the WTS session protocol is
// not consulted in either mode.
type RDPSessionDetector struct {
	RemoteSession platform.RemoteSessionProber
}

func (d RDPSessionDetector) Name() string                { return "RDP Session Detection" }
func (d RDPSessionDetector) SupportedPlatforms() []string { return []string{"windows"} }
func (d RDPSessionDetector) RequiresAdmin() bool          { return false }

func (d RDPSessionDetector) Scan(ctx context.Context) detector.TechniqueResult {
	name := d.Name()
	isRemote, err := d.RemoteSession.IsRemoteSession(ctx)
	if err != nil {
		return detector.TechniqueResult{Name: name, Detected: false, Error: err.Error()}
	}
	if isRemote {
		return detector.TechniqueResult{
			Name: name, Detected: true, Tier: detector.TierCritical,
			Details: "Current session is an active Remote Desktop (RDP) session",
		}
	}
	return detector.TechniqueResult{Name: name, Detected: false, Details: "Not an RDP session"}
}

// Monitor implements detector.Monitorable by running Scan unchanged.
func (d RDPSessionDetector) Monitor(ctx context.Context) detector.TechniqueResult {
	return d.Scan(ctx)
}

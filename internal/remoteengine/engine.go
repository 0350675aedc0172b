// Package remoteengine implements the remote-access detection pipeline:
// process enumeration, TCP-connection correlation, and reverse DNS,
// fused under a tiered policy that is configuration-driven for the
// conference-tools category (spec §4.3).
package remoteengine

import (
	"context"
	"log/slog"

	"integritywatch/internal/detector"
	"integritywatch/internal/platform"
	"integritywatch/internal/result"
)

// Engine runs the remote-access detectors and fuses their outcomes.
type Engine struct {
	log       *slog.Logger
	detectors []detector.Detector
}

// New builds the engine. The conference-tools policy flag is captured
// once at construction, per spec §9's immutable-configuration-snapshot
// redesign note.
func New(log *slog.Logger, probes *platform.Probes, allowConferenceTools bool) *Engine {
	detectors := []detector.Detector{
		ProcessDetector{
			Processes:            probes.Processes,
			Connections:          probes.Connections,
			ReverseDNS:           probes.ReverseDNS,
			AllowConferenceTools: allowConferenceTools,
		},
	}
	if probes.RemoteSession != nil {
		detectors = append(detectors, RDPSessionDetector{RemoteSession: probes.RemoteSession})
	}
	return &Engine{log: log, detectors: detectors}
}

// Run performs the one-shot baseline scan.
func (e *Engine) Run(ctx context.Context) result.DetectionResult {
	return e.evaluate(ctx, detector.SafeScan)
}

// CheckCurrentState re-evaluates the remote-access detectors using each
// detector's cheaper monitor-mode variant, per spec §4.6's periodic
// monitoring cycle.
func (e *Engine) CheckCurrentState(ctx context.Context) result.DetectionResult {
	return e.evaluate(ctx, detector.SafeMonitor)
}

type runner func(ctx context.Context, d detector.Detector) detector.TechniqueResult

func (e *Engine) evaluate(ctx context.Context, run runner) result.DetectionResult {
	if len(e.detectors) == 0 {
		return result.DetectionResult{Verdict: result.VerdictSkipped, Reason: "No active remote-access modules"}
	}

	items := make([]detector.TechniqueResult, 0, len(e.detectors))
	for _, d := range e.detectors {
		r := run(ctx, d)
		if r.Failed() {
			e.log.WarnContext(ctx, "remote-access detector failed", "detector", r.Name, "error", r.Error)
		}
		items = append(items, r)
	}

	critical, high, medium, low := result.Tally(items)
	verdict, reason := fuse(critical, high, low)

	return result.DetectionResult{
		Items: items, Verdict: verdict, Reason: reason,
		Critical: critical, High: high, Medium: medium, Low: low,
	}
}

// fuse implements spec §4.3's fusion tree.
func fuse(critical, high, low int) (result.Verdict, string) {
	switch {
	case critical > 0:
		return result.VerdictBlock, "Active remote control detected"
	case high > 0:
		return result.VerdictBlock, "Remote access tool running"
	case low > 0:
		return result.VerdictFlag, "Possible remote-access tool present (manual review)"
	default:
		return result.VerdictAllow, "No remote-access tools detected"
	}
}

package browserengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"integritywatch/internal/detector"
	"integritywatch/internal/result"
)

// Engine ingests the extension-emitted violation log and fuses four
// per-technique detectors' outputs into one verdict, per spec §4.4.
type Engine struct {
	log                       *slog.Logger
	violationsPath            string
	sessionID                 string
	allowSuspiciousWebsites   bool
	allowSuspiciousExtensions bool

	watermark int
}

// New builds the engine against the violations.json path the native
// host writes into the runtime directory.
func New(log *slog.Logger, violationsPath, sessionID string, allowSuspiciousWebsites, allowSuspiciousExtensions bool) *Engine {
	return &Engine{
		log:                       log,
		violationsPath:            violationsPath,
		sessionID:                 sessionID,
		allowSuspiciousWebsites:   allowSuspiciousWebsites,
		allowSuspiciousExtensions: allowSuspiciousExtensions,
		watermark:                 -1,
	}
}

// Run performs the one-shot baseline scan. A missing or unparseable
// violations file is treated as "no violations yet" rather than an
// error, matching the original tool's run_scan, which logs a warning
// and proceeds with an empty set (spec §8 scenario S1).
func (e *Engine) Run(ctx context.Context) result.DetectionResult {
	violations, err := loadViolations(e.violationsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			e.log.WarnContext(ctx, "browser violations unreadable, scanning with empty set", "error", err)
		}
		violations = nil
	}
	e.watermark = len(violations)
	return e.evaluate(ctx, violations, detector.SafeScan)
}

// CheckCurrentState implements spec §4.4's monitoring short-circuits:
// SKIPPED "Waiting for browser monitoring to start" before the
// violations file exists, SKIPPED "No new activity" when the record
// count matches the cached watermark (spec §8 item 4), and a full
// re-evaluation using each detector's monitor-mode variant otherwise.
func (e *Engine) CheckCurrentState(ctx context.Context) result.DetectionResult {
	violations, err := loadViolations(e.violationsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return result.DetectionResult{Verdict: result.VerdictSkipped, Reason: "Waiting for browser monitoring to start", SessionID: e.sessionID}
		}
		e.log.WarnContext(ctx, "browser violations file unreadable this cycle", "error", err)
		return result.DetectionResult{Verdict: result.VerdictSkipped, Reason: "No new activity", SessionID: e.sessionID}
	}

	if len(violations) == e.watermark {
		return result.DetectionResult{Verdict: result.VerdictSkipped, Reason: "No new activity", SessionID: e.sessionID}
	}
	e.watermark = len(violations)

	return e.evaluate(ctx, violations, detector.SafeMonitor)
}

type runner func(ctx context.Context, d detector.Detector) detector.TechniqueResult

func (e *Engine) evaluate(ctx context.Context, violations []RawViolation, run runner) result.DetectionResult {
	detectors := []detector.Detector{
		ScreenShareDetector{Violations: violations},
		MaliciousExtensionDetector{Violations: violations},
		DOMManipulationDetector{Violations: violations},
		TabSwitchingDetector{Violations: violations},
	}

	items := make([]detector.TechniqueResult, 0, len(detectors))
	totalViolations := 0
	for _, d := range detectors {
		r := run(ctx, d)
		r.Tier = severityFor(r.Name)
		if r.Failed() {
			e.log.WarnContext(ctx, "browser detector failed", "detector", r.Name, "error", r.Error)
		} else if r.Detected {
			totalViolations += r.Count
		}
		items = append(items, r)
	}

	critical, high, medium, low := result.Tally(items)
	verdict, reason := e.fuse(items, critical, high, medium, low, totalViolations)

	return result.DetectionResult{
		Items: items, Verdict: verdict, Reason: reason,
		Critical: critical, High: high, Medium: medium, Low: low,
		SessionID: e.sessionID, TotalViolations: totalViolations,
		ExamDurationMinutes: examDurationMinutes(violations),
	}
}

// fuse implements spec §4.4's accumulator-style fusion tree, resolved
// toward the accumulator reading over the first-match tree per spec §9.
func (e *Engine) fuse(items []detector.TechniqueResult, critical, high, medium, low, totalViolations int) (result.Verdict, string) {
	detected := func(name string) bool {
		for _, it := range items {
			if it.Name == name && it.Detected && !it.Failed() {
				return true
			}
		}
		return false
	}

	var blockReasons []string
	flagCount := 0
	var flagReasons []string

	if detected("Screen Sharing Detection") {
		blockReasons = append(blockReasons, "Screen Sharing Detected (Critical)")
	}
	if detected("DOM Manipulation Detection") {
		blockReasons = append(blockReasons, "DOM manipulation detected by extension")
	}
	if detected("Malicious Extension Detection") {
		if !e.allowSuspiciousExtensions {
			blockReasons = append(blockReasons, "Malicious Extension Detected with Dangerous Permissions")
		} else {
			flagCount++
			flagReasons = append(flagReasons, "Suspicious Extension Detected (Manual Review Required)")
		}
	}
	if detected("Tab Switching Detection") {
		if !e.allowSuspiciousWebsites {
			blockReasons = append(blockReasons, "High-Severity Violations (Communication Apps)")
		} else {
			flagCount++
			flagReasons = append(flagReasons, "Suspicious Tab Activity Detected (Manual Review Required)")
		}
	}
	if medium > 0 && totalViolations >= 10 {
		flagCount++
		flagReasons = append(flagReasons, "Excessive Minor Violations (Manual Review Required)")
	}

	if len(blockReasons) > 0 {
		return result.VerdictBlock, strings.Join(blockReasons, ", ")
	}
	if flagCount > 0 {
		if flagCount == 1 {
			return result.VerdictFlag, flagReasons[0]
		}
		return result.VerdictFlag, fmt.Sprintf("Multiple violations detected (%d types) – Manual Review Required", flagCount)
	}
	if medium > 0 {
		return result.VerdictAllow, "Minor Violations Within Acceptable Limits"
	}
	return result.VerdictAllow, "Clean exam session"
}

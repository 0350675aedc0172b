// Package coordinator wires the three detection engines and the native
// messaging host together into one exam session, per spec §4.6/§5: a
// one-shot baseline scan followed by an interruptible monitoring loop.
package coordinator

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"integritywatch/internal/result"
	"integritywatch/internal/security"
)

// ScanReport is the persisted outcome of a baseline scan, per spec §6.
type ScanReport struct {
	SessionID     string                 `json:"session_id"`
	Timestamp     time.Time              `json:"timestamp"`
	VMDetection   result.DetectionResult `json:"vm_detection"`
	RemoteAccess  result.DetectionResult `json:"remote_access"`
	BrowserTab    result.DetectionResult `json:"browser_tab"`
	FinalVerdict  result.Verdict         `json:"final_verdict"`
}

// writeReport persists report as pretty-printed JSON under reportDir,
// named by session ID, matching the convention of one file
// per run rather than a single mutable "latest" file.
func writeReport(reportDir string, report ScanReport) (string, error) {
	if err := security.EnsureDir(reportDir); err != nil {
		return "", fmt.Errorf("coordinator: create report dir: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("coordinator: marshal report: %w", err)
	}
	path := filepath.Join(reportDir, report.SessionID+".json")
	if err := security.WriteFileSecure(path, data); err != nil {
		return "", fmt.Errorf("coordinator: write report: %w", err)
	}
	return path, nil
}

// finalVerdict implements spec §4.6 step 4: BLOCK if any engine BLOCKs,
// FLAG if any FLAGs, else ALLOW.
func finalVerdict(vm, remote, browser result.DetectionResult) result.Verdict {
	verdict := result.VerdictAllow
	for _, v := range []result.Verdict{vm.Verdict, remote.Verdict, browser.Verdict} {
		if v == result.VerdictBlock {
			return result.VerdictBlock
		}
		if v == result.VerdictFlag {
			verdict = result.VerdictFlag
		}
	}
	return verdict
}

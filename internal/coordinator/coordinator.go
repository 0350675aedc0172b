package coordinator

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"integritywatch/internal/browserengine"
	"integritywatch/internal/config"
	"integritywatch/internal/nativehost"
	"integritywatch/internal/result"
	"integritywatch/internal/security"
	"integritywatch/internal/store"
)

// vmRunner and monitoredEngine are the minimal surfaces the coordinator
// needs from each engine, so tests can substitute fakes without
// standing up real probes or a runtime directory. *vmengine.Engine
// satisfies vmRunner; *remoteengine.Engine and *browserengine.Engine
// both satisfy monitoredEngine.
type vmRunner interface {
	Run(ctx context.Context) result.DetectionResult
}

type monitoredEngine interface {
	Run(ctx context.Context) result.DetectionResult
	CheckCurrentState(ctx context.Context) result.DetectionResult
}

// Coordinator runs the three detection engines once for the baseline,
// fuses their verdicts, and — if admissible — drives the periodic
// monitoring loop, per spec §4.6/§5.
type Coordinator struct {
	log     *slog.Logger
	cfg     *config.Config
	vm      vmRunner
	remote  monitoredEngine
	browser monitoredEngine

	runtimeDir string
	reportDir  string
	sessionID  string

	notifier HeartbeatSink // set via WithHeartbeatSink; see below
	history  *store.Store  // optional; nil disables history persistence
	alert    Alerter       // optional; nil disables desktop alerting

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Alerter is the narrow surface the coordinator needs from
// internal/notify, kept as an interface so tests don't need a session
// bus. A nil Alerter is never called.
type Alerter interface {
	Block(ctx context.Context, reason string) error
	Flag(ctx context.Context, reason string) error
}

// Option configures optional Coordinator collaborators.
type Option func(*Coordinator)

// WithHeartbeatSink injects the function that receives one
// HeartbeatPayload per monitoring cycle, per spec §9's "injected
// function, not a logger singleton" redesign note.
func WithHeartbeatSink(sink HeartbeatSink) Option {
	return func(c *Coordinator) { c.notifier = sink }
}

// WithHistory enables session-history persistence to s.
func WithHistory(s *store.Store) Option {
	return func(c *Coordinator) { c.history = s }
}

// WithAlerter enables desktop notifications on BLOCK/FLAG.
func WithAlerter(a Alerter) Option {
	return func(c *Coordinator) { c.alert = a }
}

// New builds a Coordinator around the given engines; tests pass fakes
// for vm, remote and browser directly.
func New(log *slog.Logger, cfg *config.Config, vm vmRunner, remote, browser monitoredEngine, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:        log,
		cfg:        cfg,
		vm:         vm,
		remote:     remote,
		browser:    browser,
		runtimeDir: cfg.Output.RuntimeDir,
		reportDir:  cfg.Output.ReportDir,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateSessionID builds a unique session identifier: a timestamp
// prefix plus four random bytes of hex, unique enough for a per-run
// report/history key without pulling in a UUID dependency.
func generateSessionID() (string, error) {
	now := time.Now()
	var randBytes [4]byte
	if _, err := rand.Read(randBytes[:]); err != nil {
		return "", fmt.Errorf("coordinator: generate session id: %w", err)
	}
	return now.Format("20060102-150405") + "-" + hexEncode(randBytes[:]), nil
}

func hexEncode(b []byte) string {
	const hex = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out)
}

// RunSession executes spec §4.6's full sequence: wipe the runtime dir,
// write START_MONITORING, run the baseline in VM -> Remote -> Browser
// order, fuse, persist the report, and — if admissible — start the
// monitoring loop. It blocks only for the baseline; the monitoring loop
// (if started) runs on its own goroutine and RunSession returns once it
// has been launched (or immediately, if the baseline BLOCKed).
func (c *Coordinator) RunSession(ctx context.Context) (ScanReport, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return ScanReport{}, err
	}
	c.sessionID = sessionID
	log := c.log.With("session_id", sessionID)

	if err := security.EnsureDir(c.runtimeDir); err != nil {
		return ScanReport{}, fmt.Errorf("coordinator: prepare runtime dir: %w", err)
	}
	if err := wipeRuntimeDir(c.runtimeDir); err != nil {
		log.WarnContext(ctx, "failed to fully wipe runtime dir", "error", err)
	}
	if err := nativehost.WriteCommand(c.runtimeDir, "START_MONITORING"); err != nil {
		log.WarnContext(ctx, "failed to write START_MONITORING command", "error", err)
	}

	log.InfoContext(ctx, "running vm detection engine")
	vmResult := c.vm.Run(ctx)

	log.InfoContext(ctx, "running remote-access detection engine")
	remoteResult := c.remote.Run(ctx)

	log.InfoContext(ctx, "running browser violation engine")
	browserResult := c.browser.Run(ctx)

	verdict := finalVerdict(vmResult, remoteResult, browserResult)
	log.InfoContext(ctx, "baseline scan complete", "final_verdict", verdict)

	report := ScanReport{
		SessionID:    sessionID,
		Timestamp:    time.Now().UTC(),
		VMDetection:  vmResult,
		RemoteAccess: remoteResult,
		BrowserTab:   browserResult,
		FinalVerdict: verdict,
	}

	reportPath, werr := writeReport(c.reportDir, report)
	if werr != nil {
		log.WarnContext(ctx, "failed to persist scan report", "error", werr)
	}

	if c.history != nil {
		if err := c.history.InsertSession(store.Session{
			SessionID: sessionID, Timestamp: report.Timestamp, FinalVerdict: verdict,
			VMDetection: vmResult, RemoteAccess: remoteResult, BrowserTab: browserResult,
			ReportPath: reportPath,
		}); err != nil {
			log.WarnContext(ctx, "failed to record session history", "error", err)
		}
	}

	c.alertOnVerdict(ctx, verdict, report)

	if verdict == result.VerdictBlock {
		return report, nil
	}

	go c.monitorLoop(ctx, log)
	return report, nil
}

// alertOnVerdict fires the desktop notification for a BLOCK/FLAG
// baseline verdict, per the D "desktop alert on BLOCK" supplement.
func (c *Coordinator) alertOnVerdict(ctx context.Context, verdict result.Verdict, report ScanReport) {
	if c.alert == nil {
		return
	}
	switch verdict {
	case result.VerdictBlock:
		if err := c.alert.Block(ctx, blockReason(report)); err != nil {
			c.log.WarnContext(ctx, "desktop notification failed", "error", err)
		}
	case result.VerdictFlag:
		if err := c.alert.Flag(ctx, "baseline scan flagged for manual review"); err != nil {
			c.log.WarnContext(ctx, "desktop notification failed", "error", err)
		}
	}
}

func blockReason(report ScanReport) string {
	for _, r := range []result.DetectionResult{report.VMDetection, report.RemoteAccess, report.BrowserTab} {
		if r.Verdict == result.VerdictBlock {
			return r.Reason
		}
	}
	return "blocked"
}

// monitorLoop is spec §4.6's periodic monitoring goroutine: browser
// runs strictly before remote each cycle (spec §5), a heartbeat is
// emitted once per cycle, and the loop stops on any BLOCK, cancellation
// of ctx, or Stop. It does not read command.json; on a BLOCK it writes
// STOP_MONITORING there for the native host.
func (c *Coordinator) monitorLoop(ctx context.Context, log *slog.Logger) {
	defer close(c.doneCh)

	interval := time.Duration(c.cfg.Monitoring.MonitoringIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	for {
		browserResult := c.browser.CheckCurrentState(ctx)
		remoteResult := c.remote.CheckCurrentState(ctx)

		isBlocked := browserResult.Verdict == result.VerdictBlock || remoteResult.Verdict == result.VerdictBlock
		isFlagged := browserResult.Verdict == result.VerdictFlag || remoteResult.Verdict == result.VerdictFlag

		status := "CLEAN"
		switch {
		case isBlocked:
			status = "BLOCKED"
		case isFlagged:
			status = "FLAGGED"
		}

		if c.notifier != nil {
			c.notifier(HeartbeatPayload{
				Timestamp: time.Now().UTC(),
				Status:    status,
				Remote:    EngineSummary{Verdict: string(remoteResult.Verdict), Reason: remoteResult.Reason},
				Browser:   EngineSummary{Verdict: string(browserResult.Verdict), Reason: browserResult.Reason},
			})
		}

		if isBlocked {
			reason := remoteResult.Reason
			if browserResult.Verdict == result.VerdictBlock {
				reason = browserResult.Reason
			}
			log.WarnContext(ctx, "monitoring cycle blocked", "reason", reason)
			c.alertOnVerdict(ctx, result.VerdictBlock, ScanReport{
				SessionID: c.sessionID, RemoteAccess: remoteResult, BrowserTab: browserResult,
				FinalVerdict: result.VerdictBlock,
			})
			c.stopOnce.Do(func() { close(c.stopCh) })
			_ = nativehost.WriteCommand(c.runtimeDir, "STOP_MONITORING")
			return
		}

		select {
		case <-ctx.Done():
			log.InfoContext(ctx, "monitoring loop cancelled")
			return
		case <-c.stopCh:
			log.InfoContext(ctx, "monitoring loop stopped")
			return
		case <-time.After(interval):
		}
	}
}

// Stop sets the coordinator's stop flag and returns once the monitoring
// goroutine has exited or a 2s upper bound elapses, per spec §5's
// cancellation model.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	select {
	case <-c.doneCh:
	case <-time.After(2 * time.Second):
	}
	_ = nativehost.WriteCommand(c.runtimeDir, "STOP_MONITORING")
}

// wipeRuntimeDir removes the three host-owned state files and any
// command file left from a previous session, per spec §4.6 step 1.
func wipeRuntimeDir(dir string) error {
	var firstErr error
	for _, name := range []string{"violations.json", "heartbeat.json", "status.json", "command.json"} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewBrowserEngine builds the browser engine wired to the native host's
// violations.json under cfg's configured runtime directory, keyed to
// sessionID. Exposed here (rather than left to cmd/integritywatch) so
// every caller agrees on the violations.json path convention.
func NewBrowserEngine(log *slog.Logger, cfg *config.Config, sessionID string) *browserengine.Engine {
	violationsPath := filepath.Join(cfg.Output.RuntimeDir, "violations.json")
	return browserengine.New(log, violationsPath, sessionID, cfg.Browser.AllowSuspiciousWebsites, cfg.Browser.AllowSuspiciousExtensions)
}

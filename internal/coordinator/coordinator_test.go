package coordinator

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/config"
	"integritywatch/internal/result"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubEngine struct {
	run   result.DetectionResult
	check result.DetectionResult
}

func (s stubEngine) Run(ctx context.Context) result.DetectionResult               { return s.run }
func (s stubEngine) CheckCurrentState(ctx context.Context) result.DetectionResult { return s.check }

type stubVM struct{ run result.DetectionResult }

func (s stubVM) Run(ctx context.Context) result.DetectionResult { return s.run }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Output.RuntimeDir = filepath.Join(dir, "runtime")
	cfg.Output.ReportDir = filepath.Join(dir, "reports")
	cfg.Monitoring.MonitoringIntervalSeconds = 1
	return cfg
}

func TestRunSessionBlockStopsBeforeMonitoring(t *testing.T) {
	cfg := testConfig(t)
	vm := stubVM{run: result.DetectionResult{Verdict: result.VerdictBlock, Reason: "Sandbox isolation detected"}}
	remote := stubEngine{run: result.DetectionResult{Verdict: result.VerdictAllow}}
	browser := stubEngine{run: result.DetectionResult{Verdict: result.VerdictAllow}}

	c := New(discardLogger(), cfg, vm, remote, browser)
	report, err := c.RunSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.VerdictBlock, report.FinalVerdict)

	// The monitoring loop must never have started. The goroutine cannot
	// be observed directly; since no loop closes doneCh, Stop returns
	// only after its 2s bound, and calling it here checks that closing
	// stopCh with no live loop does not panic.
	c.Stop()
}

func TestRunSessionAllowStartsMonitoringAndEmitsHeartbeat(t *testing.T) {
	cfg := testConfig(t)
	vm := stubVM{run: result.DetectionResult{Verdict: result.VerdictAllow}}
	remote := stubEngine{
		run:   result.DetectionResult{Verdict: result.VerdictAllow},
		check: result.DetectionResult{Verdict: result.VerdictAllow},
	}
	browser := stubEngine{
		run:   result.DetectionResult{Verdict: result.VerdictAllow},
		check: result.DetectionResult{Verdict: result.VerdictAllow},
	}

	heartbeats := make(chan HeartbeatPayload, 8)
	c := New(discardLogger(), cfg, vm, remote, browser, WithHeartbeatSink(func(hb HeartbeatPayload) {
		heartbeats <- hb
	}))

	report, err := c.RunSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.VerdictAllow, report.FinalVerdict)

	hb := <-heartbeats
	assert.Equal(t, "CLEAN", hb.Status)

	c.Stop()
}

func TestRunSessionMonitoringStopsOnBlock(t *testing.T) {
	cfg := testConfig(t)
	vm := stubVM{run: result.DetectionResult{Verdict: result.VerdictAllow}}
	remote := stubEngine{
		run:   result.DetectionResult{Verdict: result.VerdictAllow},
		check: result.DetectionResult{Verdict: result.VerdictBlock, Reason: "Active remote control detected"},
	}
	browser := stubEngine{
		run:   result.DetectionResult{Verdict: result.VerdictAllow},
		check: result.DetectionResult{Verdict: result.VerdictAllow},
	}

	heartbeats := make(chan HeartbeatPayload, 8)
	c := New(discardLogger(), cfg, vm, remote, browser, WithHeartbeatSink(func(hb HeartbeatPayload) {
		heartbeats <- hb
	}))

	_, err := c.RunSession(context.Background())
	require.NoError(t, err)

	hb := <-heartbeats
	assert.Equal(t, "BLOCKED", hb.Status)

	// The loop should have stopped itself; Stop should return quickly.
	c.Stop()
}

func TestFinalVerdictPromotion(t *testing.T) {
	allow := result.DetectionResult{Verdict: result.VerdictAllow}
	flag := result.DetectionResult{Verdict: result.VerdictFlag}
	block := result.DetectionResult{Verdict: result.VerdictBlock}

	assert.Equal(t, result.VerdictAllow, finalVerdict(allow, allow, allow))
	assert.Equal(t, result.VerdictFlag, finalVerdict(allow, flag, allow))
	assert.Equal(t, result.VerdictBlock, finalVerdict(allow, flag, block))
	assert.Equal(t, result.VerdictBlock, finalVerdict(block, block, block))
}

func TestGenerateSessionIDUnique(t *testing.T) {
	a, err := generateSessionID()
	require.NoError(t, err)
	b, err := generateSessionID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

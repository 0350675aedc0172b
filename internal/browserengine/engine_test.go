package browserengine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/result"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeViolations(t *testing.T, violations []RawViolation) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "violations.json")
	data, err := json.Marshal(violations)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestRunMissingFileAllows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "violations.json")
	e := New(discardLogger(), path, "sess-1", false, false)
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictAllow, r.Verdict)
	assert.Equal(t, "Clean exam session", r.Reason)
}

func TestCheckCurrentStateWaitsForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "violations.json")
	e := New(discardLogger(), path, "sess-1", false, false)
	r := e.CheckCurrentState(context.Background())
	assert.Equal(t, result.VerdictSkipped, r.Verdict)
	assert.Equal(t, "Waiting for browser monitoring to start", r.Reason)
}

// Spec §8 item 4: watermark idempotence.
func TestCheckCurrentStateSkipsWhenUnchanged(t *testing.T) {
	path := writeViolations(t, []RawViolation{
		{Type: TypeMaliciousExtension, Timestamp: 1000, Details: map[string]any{"extensionName": "X"}},
	})
	e := New(discardLogger(), path, "sess-1", false, true)
	first := e.CheckCurrentState(context.Background())
	require.NotEqual(t, result.VerdictSkipped, first.Verdict)

	second := e.CheckCurrentState(context.Background())
	assert.Equal(t, result.VerdictSkipped, second.Verdict)
	assert.Equal(t, "No new activity", second.Reason)
}

// S6: mixed signals under a permissive config downgrade to flags.
func TestFusionMixedSignalsPermissiveConfigFlags(t *testing.T) {
	path := writeViolations(t, []RawViolation{
		{Type: TypeSuspiciousTabActivated, Timestamp: 1000, Details: map[string]any{"url": "https://meet.google.com/"}},
		{Type: TypeMaliciousExtension, Timestamp: 2000, Details: map[string]any{"extensionName": "X", "permissions": []any{"tabs"}}},
	})
	e := New(discardLogger(), path, "sess-1", true, true)
	r := e.Run(context.Background())
	require.Equal(t, result.VerdictFlag, r.Verdict)
	assert.Equal(t, "Multiple violations detected (2 types) – Manual Review Required", r.Reason)
}

func TestFusionScreenShareBlocksOutright(t *testing.T) {
	path := writeViolations(t, []RawViolation{
		{Type: TypeScreenShareDetected, Timestamp: 1000, Details: map[string]any{"url": "https://example.com"}},
	})
	e := New(discardLogger(), path, "sess-1", true, true)
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictBlock, r.Verdict)
	assert.Contains(t, r.Reason, "Screen Sharing Detected")
}

func TestFusionTabSwitchingBlockedWhenNotAllowed(t *testing.T) {
	path := writeViolations(t, []RawViolation{
		{Type: TypeSuspiciousTabActivated, Timestamp: 1000, Details: map[string]any{"url": "https://discord.com/"}},
	})
	e := New(discardLogger(), path, "sess-1", false, false)
	r := e.Run(context.Background())
	assert.Equal(t, result.VerdictBlock, r.Verdict)
	assert.Contains(t, r.Reason, "High-Severity Violations")
}

func TestScreenShareDurationNonNegativeAndPaired(t *testing.T) {
	d := ScreenShareDetector{Violations: []RawViolation{
		{Type: TypeScreenShareDetected, Timestamp: 1000},
		{Type: TypeScreenShareStopped, Timestamp: 6000},
	}}
	r := d.Scan(context.Background())
	require.True(t, r.Detected)
	assert.Contains(t, r.Details, "total duration 5.0s")
}

func TestScreenShareReportsUnstoppedSessions(t *testing.T) {
	d := ScreenShareDetector{Violations: []RawViolation{
		{Type: TypeScreenShareDetected, Timestamp: 1000},
	}}
	r := d.Scan(context.Background())
	assert.Contains(t, r.Details, "not stopped properly")
}

// Spec §8 item 8: fewer than 5 events never trips the rapid-switch alert.
func TestRapidSwitchRequiresFiveEvents(t *testing.T) {
	violations := []RawViolation{
		{Type: TypeSuspiciousTabActivated, Timestamp: 0},
		{Type: TypeSuspiciousTabActivated, Timestamp: 1000},
		{Type: TypeSuspiciousTabActivated, Timestamp: 2000},
	}
	assert.Equal(t, 0, rapidSwitchCount(violations))
}

func TestRapidSwitchDetectsDenseWindow(t *testing.T) {
	violations := []RawViolation{
		{Type: TypeSuspiciousTabActivated, Timestamp: 0},
		{Type: TypeSuspiciousTabActivated, Timestamp: 5000},
		{Type: TypeSuspiciousTabActivated, Timestamp: 10000},
		{Type: TypeSuspiciousTabActivated, Timestamp: 15000},
		{Type: TypeSuspiciousTabActivated, Timestamp: 20000},
	}
	assert.Equal(t, 5, rapidSwitchCount(violations))
}

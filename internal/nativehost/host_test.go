package nativehost

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHostAppendsViolationAndStopsOnEOF(t *testing.T) {
	dir := t.TempDir()
	state, err := NewState(dir)
	require.NoError(t, err)

	var stdin bytes.Buffer
	require.NoError(t, WriteJSON(&stdin, map[string]any{
		"type": "VIOLATION", "violationType": "SCREEN_SHARE_DETECTED",
		"timestamp": 1234, "details": map[string]any{"url": "https://example.com"},
	}))

	var stdout bytes.Buffer
	h := New(discardLogger(), state, &stdin, &stdout, 5)
	err = h.Run(context.Background())
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "violations.json"))
	require.NoError(t, err)
	var records []RawViolationRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "SCREEN_SHARE_DETECTED", records[0].Type)

	statusData, err := os.ReadFile(filepath.Join(dir, "status.json"))
	require.NoError(t, err)
	var status StatusDocument
	require.NoError(t, json.Unmarshal(statusData, &status))
	assert.Equal(t, "STOPPED", status.Status)
}

func TestHostDropsUnknownMessageType(t *testing.T) {
	dir := t.TempDir()
	state, err := NewState(dir)
	require.NoError(t, err)

	var stdin bytes.Buffer
	require.NoError(t, WriteJSON(&stdin, map[string]any{"type": "NOT_A_REAL_TYPE"}))

	h := New(discardLogger(), state, &stdin, io.Discard, 5)
	err = h.Run(context.Background())
	assert.NoError(t, err)
}

func TestCommandPollStartsMonitoring(t *testing.T) {
	dir := t.TempDir()
	state, err := NewState(dir)
	require.NoError(t, err)
	require.NoError(t, WriteCommand(dir, "START_MONITORING"))

	var stdout bytes.Buffer
	h := New(discardLogger(), state, bytes.NewReader(nil), &stdout, 5)
	require.NoError(t, h.pollCommand(context.Background()))
	assert.True(t, state.MonitoringActive)

	frame, err := ReadFrame(&stdout)
	require.NoError(t, err)
	var msg StartMonitoringMessage
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, 5, msg.Config.Interval)

	_, err = os.Stat(filepath.Join(dir, "command.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestAppendViolationReadModifyWrite(t *testing.T) {
	dir := t.TempDir()
	state, err := NewState(dir)
	require.NoError(t, err)

	require.NoError(t, state.AppendViolation(RawViolationRecord{Type: "A", Timestamp: 1}))
	require.NoError(t, state.AppendViolation(RawViolationRecord{Type: "B", Timestamp: 2}))

	data, err := os.ReadFile(filepath.Join(dir, "violations.json"))
	require.NoError(t, err)
	var records []RawViolationRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Type)
	assert.Equal(t, "B", records[1].Type)
}

package nativehost

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"integritywatch/internal/security"
)

const (
	violationsFile = "violations.json"
	heartbeatFile  = "heartbeat.json"
	statusFile     = "status.json"
	commandFile    = "command.json"
)

// StatusDocument is the contents of status.json, written on the
// RUNNING -> STOPPED transition, per spec §4.5.
type StatusDocument struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	PID       int       `json:"pid"`
}

// CommandDocument is the contents of command.json, written by the
// coordinator and polled by the host at ~1 Hz, per spec §4.5.
type CommandDocument struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// State owns the runtime directory's three host-written files:
// violations.json, heartbeat.json, status.json. Per spec §5 this
// directory is single-writer per file — only the host writes these
// three, and only from its single dispatch goroutine — so no lock is
// needed around the read-modify-write append.
type State struct {
	RuntimeDir       string
	MonitoringActive bool
}

// NewState builds host state rooted at runtimeDir and clears the
// host-owned files, per spec §3's "native host's state files are
// cleared on host startup" lifecycle rule.
func NewState(runtimeDir string) (*State, error) {
	if err := security.EnsureDir(runtimeDir); err != nil {
		return nil, fmt.Errorf("nativehost: create runtime dir: %w", err)
	}
	s := &State{RuntimeDir: runtimeDir}
	for _, name := range []string{violationsFile, heartbeatFile, statusFile} {
		_ = os.Remove(filepath.Join(runtimeDir, name))
	}
	return s, nil
}

func (s *State) path(name string) string { return filepath.Join(s.RuntimeDir, name) }

// AppendViolation implements spec §3's read-modify-write append
// discipline: violations.json is read in full, the new record appended,
// and the whole array rewritten.
func (s *State) AppendViolation(v RawViolationRecord) error {
	path := s.path(violationsFile)
	var existing []RawViolationRecord

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if uerr := json.Unmarshal(data, &existing); uerr != nil {
			return fmt.Errorf("nativehost: corrupt violations.json: %w", uerr)
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("nativehost: read violations.json: %w", err)
	}

	existing = append(existing, v)
	out, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	return security.WriteFileSecure(path, out)
}

// WriteHeartbeat overwrites heartbeat.json with the latest payload.
func (s *State) WriteHeartbeat(h HeartbeatData) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return security.WriteFileSecure(s.path(heartbeatFile), data)
}

// WriteStatus overwrites status.json, used on the RUNNING -> STOPPED
// transition per spec §4.5.
func (s *State) WriteStatus(status string, pid int) error {
	doc := StatusDocument{Status: status, Timestamp: time.Now(), PID: pid}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return security.WriteFileSecure(s.path(statusFile), data)
}

// PollCommand reads command.json if present and unlinks it, per spec
// §4.5's "the host consumes (unlinks) the file after processing". A
// missing file is not an error — it simply means no command arrived
// this polling tick.
func (s *State) PollCommand() (*CommandDocument, error) {
	path := s.path(commandFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("nativehost: read command.json: %w", err)
	}
	if rerr := os.Remove(path); rerr != nil && !os.IsNotExist(rerr) {
		return nil, fmt.Errorf("nativehost: unlink command.json: %w", rerr)
	}

	var cmd CommandDocument
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("nativehost: corrupt command.json: %w", err)
	}
	return &cmd, nil
}

// WriteCommand is used by the coordinator side, not the host, to place
// a command.json the host will pick up on its next poll.
func WriteCommand(runtimeDir, command string) error {
	if err := security.EnsureDir(runtimeDir); err != nil {
		return err
	}
	doc := CommandDocument{Command: command, Timestamp: time.Now()}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return security.WriteFileSecure(filepath.Join(runtimeDir, commandFile), data)
}

// RawViolationRecord is the JSON shape appended to violations.json —
// kept independent of browserengine.RawViolation so the host package
// has no dependency on the detection engines, per the coordinator-only
// wiring spec §5 describes.
type RawViolationRecord struct {
	Type       string         `json:"type"`
	Timestamp  int64          `json:"timestamp"`
	DetectedAt string         `json:"detected_at"`
	Details    map[string]any `json:"details,omitempty"`
}

package nativehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// frameQueueSize bounds the reader goroutine's handoff channel, per
// spec §5: "one dedicated reader task to drain stdin into a bounded
// queue and a main task that dequeues and dispatches."
const frameQueueSize = 64

// commandPollInterval is the ~1 Hz cadence spec §4.5/§5 specify for
// polling command.json.
const commandPollInterval = time.Second

// Host is the native-messaging host process: one reader goroutine
// draining framed stdin, and one dispatch loop that also polls
// command.json, per spec §4.5/§5.
type Host struct {
	log      *slog.Logger
	state    *State
	stdin    io.Reader
	stdout   io.Writer
	pid      int
	interval int // seconds, sent to the extension in START_MONITORING
}

// New builds a Host reading/writing stdin/stdout framed messages and
// persisting state under state.RuntimeDir.
func New(log *slog.Logger, state *State, stdin io.Reader, stdout io.Writer, intervalSeconds int) *Host {
	return &Host{log: log, state: state, stdin: stdin, stdout: stdout, pid: os.Getpid(), interval: intervalSeconds}
}

// Run drains stdin until EOF or ctx cancellation, dispatching each
// frame and polling command.json on the stated cadence. It always
// writes a STOPPED status document before returning, per spec §4.5/§7.
func (h *Host) Run(ctx context.Context) error {
	frames := make(chan []byte, frameQueueSize)
	readErr := make(chan error, 1)

	go func() {
		defer close(frames)
		for {
			frame, err := ReadFrame(h.stdin)
			if err != nil {
				readErr <- err
				return
			}
			frames <- frame
		}
	}()

	ticker := time.NewTicker(commandPollInterval)
	defer ticker.Stop()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		case frame, ok := <-frames:
			if !ok {
				runErr = <-readErr
				break loop
			}
			if err := h.dispatch(ctx, frame); err != nil {
				h.log.WarnContext(ctx, "dispatch failed", "error", err)
			}
		case <-ticker.C:
			if err := h.pollCommand(ctx); err != nil {
				h.log.WarnContext(ctx, "command poll failed", "error", err)
			}
		}
	}

	if err := h.state.WriteStatus("STOPPED", h.pid); err != nil {
		h.log.WarnContext(ctx, "failed to write status.json on shutdown", "error", err)
	}
	if runErr == io.EOF {
		return nil
	}
	return runErr
}

// dispatch decodes a frame's envelope and routes it per spec §4.5's
// message table. A framing violation (malformed JSON) is logged and
// the frame dropped — the host does not terminate, per spec §7.
func (h *Host) dispatch(ctx context.Context, frame []byte) error {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.log.WarnContext(ctx, "dropping malformed frame", "error", err)
		return nil
	}

	switch env.Type {
	case MsgExtensionReady:
		h.log.InfoContext(ctx, "extension ready")
		return nil

	case MsgHeartbeat:
		var data HeartbeatData
		if env.Data != nil {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return fmt.Errorf("nativehost: decode heartbeat data: %w", err)
			}
		}
		if err := h.state.WriteHeartbeat(data); err != nil {
			return err
		}
		h.log.InfoContext(ctx, "heartbeat", "total_tabs", data.TotalTabs, "suspicious_tabs", data.SuspiciousTabCount)
		return nil

	case MsgViolation:
		record := RawViolationRecord{Type: env.ViolationType, Timestamp: env.Timestamp, DetectedAt: time.Now().UTC().Format(time.RFC3339)}
		if env.Details != nil {
			if err := json.Unmarshal(env.Details, &record.Details); err != nil {
				return fmt.Errorf("nativehost: decode violation details: %w", err)
			}
		}
		return h.state.AppendViolation(record)

	case MsgScreenShareStopped:
		var data ScreenShareStoppedData
		if env.Data != nil {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return fmt.Errorf("nativehost: decode screen-share-stopped data: %w", err)
			}
		}
		record := RawViolationRecord{
			Type: string(MsgScreenShareStopped), Timestamp: env.Timestamp,
			DetectedAt: time.Now().UTC().Format(time.RFC3339),
			Details:    map[string]any{"tabId": data.TabID, "url": data.URL},
		}
		return h.state.AppendViolation(record)

	case MsgPong:
		return nil

	default:
		h.log.WarnContext(ctx, "unknown message type", "type", env.Type)
		return nil
	}
}

// pollCommand checks command.json and, on START_MONITORING or
// STOP_MONITORING, flips the monitoring latch and forwards the
// equivalent host -> extension message, per spec §4.5/§4.6.
func (h *Host) pollCommand(ctx context.Context) error {
	cmd, err := h.state.PollCommand()
	if err != nil || cmd == nil {
		return err
	}

	switch cmd.Command {
	case "START_MONITORING":
		h.state.MonitoringActive = true
		return WriteJSON(h.stdout, StartMonitoringMessage{
			Type: "START_MONITORING",
			Config: StartMonitoringConfig{
				Interval:          h.interval,
				SuspiciousDomains: SuspiciousDomains,
			},
		})
	case "STOP_MONITORING":
		h.state.MonitoringActive = false
		return WriteJSON(h.stdout, StopMonitoringMessage{Type: "STOP_MONITORING"})
	default:
		h.log.WarnContext(ctx, "unknown command", "command", cmd.Command)
		return nil
	}
}

package coordinator

import "time"

// EngineSummary is one engine's condensed state within a heartbeat, per
// spec §4.6's "per-engine summaries" requirement.
type EngineSummary struct {
	Verdict string `json:"verdict"`
	Reason  string `json:"reason"`
}

// HeartbeatPayload is emitted once per monitoring cycle. Status is
// "CLEAN" when neither engine reports BLOCK/FLAG this cycle, "FLAGGED"
// when at least one does, and "BLOCKED" when the cycle ends the session.
type HeartbeatPayload struct {
	Timestamp time.Time     `json:"timestamp"`
	Status    string        `json:"status"`
	Remote    EngineSummary `json:"remote_access"`
	Browser   EngineSummary `json:"browser_tab"`
}

// HeartbeatSink receives one HeartbeatPayload per monitoring cycle. It
// is an injected function, never a logger singleton or package-level
// global, so the coordinator is testable without wiring real transport.
type HeartbeatSink func(HeartbeatPayload)

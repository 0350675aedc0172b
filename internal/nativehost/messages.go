package nativehost

import "encoding/json"

// MessageType discriminates an extension -> host frame, per spec §6.
type MessageType string

const (
	MsgExtensionReady    MessageType = "EXTENSION_READY"
	MsgHeartbeat         MessageType = "HEARTBEAT"
	MsgViolation         MessageType = "VIOLATION"
	MsgScreenShareStopped MessageType = "SCREEN_SHARE_STOPPED"
	MsgPong              MessageType = "PONG"
)

// envelope is the shared shape every inbound frame decodes into first,
// per spec §9's tagged-variant redesign note: a discriminator field
// plus the union of every variant's payload fields, re-decoded into the
// specific struct once Type is known.
type envelope struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`

	// VIOLATION fields (spec §6)
	ViolationType string          `json:"violationType,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
}

// HeartbeatData is HEARTBEAT's data payload, per spec §6.
type HeartbeatData struct {
	TotalTabs          int              `json:"totalTabs"`
	SuspiciousTabCount int              `json:"suspiciousTabCount"`
	SuspiciousTabs     []SuspiciousTab  `json:"suspiciousTabs"`
}

// SuspiciousTab is one entry in HeartbeatData.SuspiciousTabs.
type SuspiciousTab struct {
	URL string `json:"url"`
}

// ScreenShareStoppedData is SCREEN_SHARE_STOPPED's data payload.
type ScreenShareStoppedData struct {
	TabID int    `json:"tabId"`
	URL   string `json:"url"`
}

// StartMonitoringConfig is the config object sent with a
// START_MONITORING host -> extension message, per spec §6.
type StartMonitoringConfig struct {
	Interval          int      `json:"interval"`
	TargetWebsite     string   `json:"targetWebsite,omitempty"`
	SuspiciousDomains []string `json:"suspiciousDomains"`
}

// StartMonitoringMessage is a host -> extension control message.
type StartMonitoringMessage struct {
	Type   MessageType           `json:"type"`
	Config StartMonitoringConfig `json:"config"`
}

// StopMonitoringMessage is a host -> extension control message.
type StopMonitoringMessage struct {
	Type MessageType `json:"type"`
}

// SuspiciousDomains is the canonical list from spec §6, sent to the
// extension in every START_MONITORING message.
var SuspiciousDomains = []string{
	"meet.google.com", "teams.microsoft.com", "zoom.us", "discord.com",
	"slack.com", "whatsapp.com", "telegram.org", "messenger.com",
	"chat.google.com", "hangouts.google.com", "whereby.com", "jitsi.org",
	"8x8.vc", "webex.com",
}

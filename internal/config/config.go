// Package config loads and validates the IntegrityWatch configuration file.
//
// Config is an immutable snapshot: once Load returns, the value is passed
// by value into each engine constructor and never mutated. Hot-reload
// (Loader, in loader.go) produces a new snapshot rather than mutating the
// old one in place.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"integritywatch/internal/logging"
)

// Config is the root configuration document, loaded from a JSON file.
type Config struct {
	Logging     logging.Config    `json:"logging"`
	Output      OutputConfig      `json:"output"`
	Monitoring  MonitoringConfig  `json:"monitoring"`
	RemoteAccess RemoteAccessConfig `json:"remote_access"`
	Browser     BrowserConfig     `json:"browser"`
}

// OutputConfig controls where the scan report and runtime state live.
type OutputConfig struct {
	ReportDir  string `json:"report_dir"`
	RuntimeDir string `json:"runtime_dir"`
	HistoryDB  string `json:"history_db"`
}

// MonitoringConfig controls the periodic monitoring loop.
type MonitoringConfig struct {
	MonitoringIntervalSeconds int `json:"monitoring_interval"`
}

// RemoteAccessConfig controls remote-access engine policy.
type RemoteAccessConfig struct {
	AllowConferenceTools bool `json:"allow_conference_tools"`
}

// BrowserConfig controls browser engine fusion policy.
type BrowserConfig struct {
	AllowSuspiciousWebsites   bool `json:"allow_suspicious_websites"`
	AllowSuspiciousExtensions bool `json:"allow_suspicious_extensions"`
}

// IntegrityWatchDir returns "<home>/.integritywatch".
func IntegrityWatchDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".integritywatch")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(IntegrityWatchDir(), "config.json")
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	dir := IntegrityWatchDir()
	cfg := &Config{
		Logging: logging.DefaultConfig("integritywatch"),
		Output: OutputConfig{
			ReportDir:  filepath.Join(dir, "reports"),
			RuntimeDir: filepath.Join(dir, "runtime", "browser"),
			HistoryDB:  filepath.Join(dir, "history.db"),
		},
		Monitoring: MonitoringConfig{MonitoringIntervalSeconds: 5},
	}
	return cfg
}

// Validate checks structural invariants after loading or a hot reload.
func (c *Config) Validate() error {
	if c.Monitoring.MonitoringIntervalSeconds <= 0 {
		return fmt.Errorf("config: monitoring.monitoring_interval must be positive, got %d", c.Monitoring.MonitoringIntervalSeconds)
	}
	if c.Output.RuntimeDir == "" {
		return fmt.Errorf("config: output.runtime_dir must not be empty")
	}
	return nil
}

// Load reads the configuration from path, creating it with defaults if
// it does not exist. An empty path resolves to DefaultPath().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		cfg := Default()
		if werr := save(path, cfg); werr != nil {
			return nil, fmt.Errorf("config: write default config: %w", werr)
		}
		return cfg, nil
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Logging.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

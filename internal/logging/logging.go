// Package logging provides structured logging for IntegrityWatch.
//
// Every engine, the coordinator, and the native host take a *slog.Logger
// passed in explicitly rather than reaching for a package-level global.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Format is the log output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Config holds logging configuration, loaded from the "logging" section
// of the IntegrityWatch config file.
type Config struct {
	Level      slog.Level `json:"-"`
	LevelName  string     `json:"level"`
	Format     Format     `json:"-"`
	FormatName string     `json:"format"`
	Output     string     `json:"output"` // stdout | stderr | file | both
	FilePath   string     `json:"file_path"`
	MaxSizeMB  int64      `json:"max_size_mb"`
	MaxAgeDays int        `json:"max_age_days"`
	MaxBackups int        `json:"max_backups"`
	Compress   bool       `json:"compress"`
	AddSource  bool       `json:"add_source"`
	Component  string     `json:"-"`
}

// DefaultConfig returns conservative defaults: info level, JSON, stderr.
func DefaultConfig(component string) Config {
	return Config{
		Level:      slog.LevelInfo,
		LevelName:  "info",
		Format:     FormatJSON,
		FormatName: "json",
		Output:     "stderr",
		MaxSizeMB:  10,
		MaxAgeDays: 14,
		MaxBackups: 5,
		Component:  component,
	}
}

// Normalize resolves LevelName/FormatName into Level/Format, called after
// JSON unmarshaling since slog.Level and Format aren't self-decoding here.
func (c *Config) Normalize() {
	switch c.LevelName {
	case "debug":
		c.Level = slog.LevelDebug
	case "warn":
		c.Level = slog.LevelWarn
	case "error":
		c.Level = slog.LevelError
	default:
		c.Level = slog.LevelInfo
	}
	if c.FormatName == "text" {
		c.Format = FormatText
	} else {
		c.Format = FormatJSON
	}
}

// New builds a *slog.Logger per cfg. The returned closer must be Closed
// by the caller on shutdown to flush and release the rotated file.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	switch cfg.Output {
	case "stdout":
		writers = append(writers, os.Stdout)
	case "file":
		r, err := newRotator(cfg)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, r)
		closer = r
	case "both":
		r, err := newRotator(cfg)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, os.Stderr, r)
		closer = r
	default:
		writers = append(writers, os.Stderr)
	}

	var w io.Writer
	if len(writers) == 1 {
		w = writers[0]
	} else {
		w = io.MultiWriter(writers...)
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return logger, closer, nil
}

func newRotator(cfg Config) (*Rotator, error) {
	path := cfg.FilePath
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".integritywatch", "logs", "integritywatch.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return NewRotator(path, cfg.MaxSizeMB, cfg.MaxAgeDays, cfg.MaxBackups, cfg.Compress)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

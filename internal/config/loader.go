package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Loader owns a live *Config snapshot and can hot-reload it from disk.
// Nothing outside this package's tests constructs a Loader: the CLI,
// coordinator and engines use the snapshot returned by Load, and the
// engines keep the allow_* values captured at construction.
type Loader struct {
	path string
	log  *slog.Logger

	mu      sync.RWMutex
	current *Config

	watcher  *fsnotify.Watcher
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLoader creates a Loader around path, performing an initial Load.
func NewLoader(path string, log *slog.Logger) (*Loader, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = DefaultPath()
	}
	return &Loader{path: path, log: log, current: cfg, stop: make(chan struct{})}, nil
}

// Snapshot returns the current immutable Config. Callers must treat the
// returned value as read-only; Reload swaps in a new *Config rather than
// mutating this one.
func (l *Loader) Snapshot() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Watch starts watching the config file's directory for changes and
// reloads the snapshot on write events. It is safe to call Stop even if
// Watch was never called.
func (l *Loader) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return err
	}
	l.watcher = w

	go l.loop()
	return nil
}

func (l *Loader) loop() {
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(l.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			l.reload()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			if l.log != nil {
				l.log.Warn("config watch error", "error", err)
			}
		case <-l.stop:
			return
		}
	}
}

func (l *Loader) reload() {
	cfg, err := Load(l.path)
	if err != nil {
		if l.log != nil {
			l.log.Warn("config reload failed, keeping previous snapshot", "error", err)
		}
		return
	}
	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	if l.log != nil {
		l.log.Info("config reloaded")
	}
}

// Stop ends the watch goroutine and closes the underlying fsnotify watcher.
func (l *Loader) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
		if l.watcher != nil {
			l.watcher.Close()
		}
	})
}

// Package store persists a local, append-only history of completed
// scan sessions. Spec §1 excludes network transport of reports but says
// nothing about keeping past ones around locally; this is the
// SPEC_FULL.md D "scan history store" supplement, built on the same
// schema-as-a-constant-string sqlite migration pattern used elsewhere
// in this codebase.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"integritywatch/internal/result"
)

// Schema for the session history database. One row per completed
// baseline scan; the three engine documents are stored as JSON blobs
// rather than normalized, since nothing here needs to be queried by
// their internal fields.
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id      TEXT PRIMARY KEY,
    timestamp       INTEGER NOT NULL,
    final_verdict   TEXT NOT NULL,
    vm_detection    TEXT NOT NULL,
    remote_access   TEXT NOT NULL,
    browser_tab     TEXT NOT NULL,
    report_path     TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);
`

// Store is the session-history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path and applies the
// schema migration.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("store: create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Session is one persisted scan session, as read back from history.
type Session struct {
	SessionID    string                 `json:"session_id"`
	Timestamp    time.Time              `json:"timestamp"`
	FinalVerdict result.Verdict         `json:"final_verdict"`
	VMDetection  result.DetectionResult `json:"vm_detection"`
	RemoteAccess result.DetectionResult `json:"remote_access"`
	BrowserTab   result.DetectionResult `json:"browser_tab"`
	ReportPath   string                 `json:"report_path,omitempty"`
}

// InsertSession records a completed baseline scan. It is called once
// per session, after fusion, never updated afterward — results are
// constructed per scan and never mutated, per spec §3's lifecycle rule.
func (s *Store) InsertSession(sess Session) error {
	vm, err := json.Marshal(sess.VMDetection)
	if err != nil {
		return fmt.Errorf("store: marshal vm_detection: %w", err)
	}
	remote, err := json.Marshal(sess.RemoteAccess)
	if err != nil {
		return fmt.Errorf("store: marshal remote_access: %w", err)
	}
	browser, err := json.Marshal(sess.BrowserTab)
	if err != nil {
		return fmt.Errorf("store: marshal browser_tab: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO sessions
			(session_id, timestamp, final_verdict, vm_detection, remote_access, browser_tab, report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.SessionID, sess.Timestamp.Unix(), string(sess.FinalVerdict),
		string(vm), string(remote), string(browser), sess.ReportPath,
	)
	if err != nil {
		return fmt.Errorf("store: insert session: %w", err)
	}
	return nil
}

// GetSession retrieves one session by ID, or (nil, nil) if not found.
func (s *Store) GetSession(sessionID string) (*Session, error) {
	var sess Session
	var ts int64
	var verdict, vm, remote, browser string
	var reportPath sql.NullString

	err := s.db.QueryRow(`
		SELECT session_id, timestamp, final_verdict, vm_detection, remote_access, browser_tab, report_path
		FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&sess.SessionID, &ts, &verdict, &vm, &remote, &browser, &reportPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get session: %w", err)
	}

	if err := decodeSession(&sess, ts, verdict, vm, remote, browser, reportPath); err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListRecent returns the limit most recent sessions, newest first.
func (s *Store) ListRecent(limit int) ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT session_id, timestamp, final_verdict, vm_detection, remote_access, browser_tab, report_path
		FROM sessions
		ORDER BY timestamp DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var ts int64
		var verdict, vm, remote, browser string
		var reportPath sql.NullString

		if err := rows.Scan(&sess.SessionID, &ts, &verdict, &vm, &remote, &browser, &reportPath); err != nil {
			return nil, fmt.Errorf("store: scan session row: %w", err)
		}
		if err := decodeSession(&sess, ts, verdict, vm, remote, browser, reportPath); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate sessions: %w", err)
	}
	return sessions, nil
}

func decodeSession(sess *Session, ts int64, verdict, vm, remote, browser string, reportPath sql.NullString) error {
	sess.Timestamp = time.Unix(ts, 0).UTC()
	sess.FinalVerdict = result.Verdict(verdict)
	sess.ReportPath = reportPath.String

	if err := json.Unmarshal([]byte(vm), &sess.VMDetection); err != nil {
		return fmt.Errorf("store: unmarshal vm_detection: %w", err)
	}
	if err := json.Unmarshal([]byte(remote), &sess.RemoteAccess); err != nil {
		return fmt.Errorf("store: unmarshal remote_access: %w", err)
	}
	if err := json.Unmarshal([]byte(browser), &sess.BrowserTab); err != nil {
		return fmt.Errorf("store: unmarshal browser_tab: %w", err)
	}
	return nil
}

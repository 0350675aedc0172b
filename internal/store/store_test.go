package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/detector"
	"integritywatch/internal/result"
)

func TestInsertAndGetSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	sess := Session{
		SessionID:    "20260101-120000-abcd",
		Timestamp:    time.Now().UTC().Truncate(time.Second),
		FinalVerdict: result.VerdictFlag,
		VMDetection: result.DetectionResult{
			Verdict: result.VerdictAllow, Reason: "System appears clean",
			Items: []detector.TechniqueResult{{Name: "MAC Address Check", Detected: false}},
		},
		RemoteAccess: result.DetectionResult{Verdict: result.VerdictAllow, Reason: "No remote-access tools detected"},
		BrowserTab:   result.DetectionResult{Verdict: result.VerdictFlag, Reason: "Multiple violations detected (2 types)"},
		ReportPath:   "/tmp/reports/20260101-120000-abcd.json",
	}

	require.NoError(t, s.InsertSession(sess))

	got, err := s.GetSession(sess.SessionID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.SessionID, got.SessionID)
	assert.Equal(t, sess.FinalVerdict, got.FinalVerdict)
	assert.Equal(t, sess.Timestamp.Unix(), got.Timestamp.Unix())
	assert.Equal(t, sess.BrowserTab.Reason, got.BrowserTab.Reason)
	assert.Equal(t, sess.ReportPath, got.ReportPath)
}

func TestGetSessionMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetSession("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.InsertSession(Session{
			SessionID: id, Timestamp: base.Add(time.Duration(i) * time.Minute), FinalVerdict: result.VerdictAllow,
		}))
	}

	sessions, err := s.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "c", sessions[0].SessionID)
	assert.Equal(t, "b", sessions[1].SessionID)
}

func TestInsertSessionReplacesOnDuplicateID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	id := "dup"
	require.NoError(t, s.InsertSession(Session{SessionID: id, Timestamp: time.Now().UTC(), FinalVerdict: result.VerdictAllow}))
	require.NoError(t, s.InsertSession(Session{SessionID: id, Timestamp: time.Now().UTC(), FinalVerdict: result.VerdictBlock}))

	got, err := s.GetSession(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result.VerdictBlock, got.FinalVerdict)
}

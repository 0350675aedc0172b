package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Monitoring.MonitoringIntervalSeconds)
	require.False(t, cfg.RemoteAccess.AllowConferenceTools)

	_, err = os.Stat(path)
	require.NoError(t, err, "Load should persist a default config file")
}

func TestLoadParsesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"monitoring": {"monitoring_interval": 10},
		"remote_access": {"allow_conference_tools": true},
		"browser": {"allow_suspicious_websites": true, "allow_suspicious_extensions": true}
	}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Monitoring.MonitoringIntervalSeconds)
	require.True(t, cfg.RemoteAccess.AllowConferenceTools)
	require.True(t, cfg.Browser.AllowSuspiciousWebsites)
	require.True(t, cfg.Browser.AllowSuspiciousExtensions)
}

func TestValidateRejectsNonPositiveInterval(t *testing.T) {
	cfg := Default()
	cfg.Monitoring.MonitoringIntervalSeconds = 0
	require.Error(t, cfg.Validate())
}

func TestLoaderHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"monitoring":{"monitoring_interval":5}}`), 0600))

	loader, err := NewLoader(path, nil)
	require.NoError(t, err)
	require.Equal(t, 5, loader.Snapshot().Monitoring.MonitoringIntervalSeconds)

	require.NoError(t, loader.Watch())
	defer loader.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"monitoring":{"monitoring_interval":15}}`), 0600))

	require.Eventually(t, func() bool {
		return loader.Snapshot().Monitoring.MonitoringIntervalSeconds == 15
	}, 2*time.Second, 10*time.Millisecond)
}

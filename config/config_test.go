// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Uses t.Setenv and temp files so the host environment is not consulted
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsToMockWithoutCredentials(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendMock, cfg.ResolvedBackend())
	assert.Equal(t, 200*time.Millisecond, cfg.MockLatencyMin)
	assert.Equal(t, 400*time.Millisecond, cfg.MockLatencyMax)
}

func TestCredentialsSelectRemote(t *testing.T) {
	cfg := Default()
	cfg.ProjectID = "proj"
	cfg.PublicKey = "key"
	assert.Equal(t, BackendRemote, cfg.ResolvedBackend())
	assert.Error(t, cfg.Validate(), "remote needs an API URL")

	cfg.APIURL = "https://records.example.com"
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CRMSYNC_BACKEND", " SQLite ")
	t.Setenv("CRMSYNC_DB_PATH", "/tmp/x.db")
	t.Setenv("CRMSYNC_MOCK_LATENCY_MIN", "0")
	t.Setenv("CRMSYNC_MOCK_LATENCY_MAX", "50ms")
	t.Setenv("CRMSYNC_HTTP_TIMEOUT", "5s")

	cfg := Default()
	require.NoError(t, applyEnvOverrides(cfg))
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, time.Duration(0), cfg.MockLatencyMin)
	assert.Equal(t, 50*time.Millisecond, cfg.MockLatencyMax)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestEnvOverrideRejectsBadDuration(t *testing.T) {
	t.Setenv("CRMSYNC_HTTP_TIMEOUT", "soon")
	assert.ErrorContains(t, applyEnvOverrides(Default()), "CRMSYNC_HTTP_TIMEOUT")
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Default()
	cfg.Backend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unknown backend")
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CRMSYNC_BACKEND=charm\nCRMSYNC_LOG_LEVEL=debug\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("CRMSYNC_BACKEND")
		_ = os.Unsetenv("CRMSYNC_LOG_LEVEL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendCharm, cfg.ResolvedBackend())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":"sqlite","db_path":"/data/crm.db"}`), 0600))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/data/crm.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel, "unset keys keep defaults")

	assert.NoError(t, LoadFile(filepath.Join(t.TempDir(), "missing.json"), cfg))
}

func TestLoadFileReadsDurationStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"http_timeout":"45s","mock_latency_min":50,"mock_latency_max":"1.5s"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.MockLatencyMin, "bare numbers are milliseconds, like the env vars")
	assert.Equal(t, 1500*time.Millisecond, cfg.MockLatencyMax)
	assert.Equal(t, "info", cfg.LogLevel)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"http_timeout":"soon"}`), 0600))
	assert.ErrorContains(t, LoadFile(bad, Default()), "http_timeout")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Backend = BackendRemote
	cfg.ProjectID = "p1"
	cfg.PublicKey = "secret"
	cfg.APIURL = "https://records.example.com"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"http_timeout": "30s"`)

	loaded := Default()
	require.NoError(t, LoadFile(path, loaded))
	assert.Equal(t, cfg, loaded)
}

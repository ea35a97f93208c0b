package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

const validYAML = `
name: fincharts-viewer
host: 127.0.0.1
port: 8090
log_level: INFO

storage:
  db_type: sqlite
  db_path: ./state.db
  db_connection_string: ""

network:
  timeout: 15
  retries: 0

fincharts:
  rest_uri: https://platform.example.com
  ws_uri: wss://platform.example.com
  username: r_test
  password: secret
  provider: simulation
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfigLoadsYAML(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "fincharts-viewer", cfg.Name)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage.DBType)
	assert.Equal(t, 15, cfg.Network.RequestTimeout)
	assert.Equal(t, "https://platform.example.com", cfg.Fincharts.RestURI)
	assert.Equal(t, "simulation", cfg.Fincharts.Provider)
}

// -----------------------------------------------------------------------------

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestEnvironmentOverridesCredentials(t *testing.T) {
	t.Setenv("FINCHARTS_USERNAME", "env_user")
	t.Setenv("FINCHARTS_PASSWORD", "env_pass")
	t.Setenv("FINCHARTS_REST_URI", "https://override.example.com")

	cfg, err := NewConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "env_user", cfg.Fincharts.Username)
	assert.Equal(t, "env_pass", cfg.Fincharts.Password)
	assert.Equal(t, "https://override.example.com", cfg.Fincharts.RestURI)
	// Untouched values survive the overlay.
	assert.Equal(t, "wss://platform.example.com", cfg.Fincharts.WsURI)
}

// -----------------------------------------------------------------------------

func TestValidationRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name    string
		old     string
		new     string
		message string
	}{
		{"missing credentials", "username: r_test", `username: ""`, "credentials"},
		{"privileged port", "port: 8090", "port: 80", "port"},
		{"sqlite without path", "db_path: ./state.db", `db_path: ""`, "path"},
		{"zero timeout", "timeout: 15", "timeout: 0", "timeout"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			broken := strings.Replace(validYAML, tc.old, tc.new, 1)
			_, err := NewConfig(writeConfig(t, broken))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrips(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(out))

	reloaded, err := NewConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.MConfig, reloaded.MConfig)
}

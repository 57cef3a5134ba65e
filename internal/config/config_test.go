package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/port"
	"github.com/shinji-kodama/stackup/internal/wait"
)

// writeFile is a test helper that writes content into dir/name.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	settings, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, Defaults(), settings)
	assert.Equal(t, port.DefaultPlan(), settings.Plan)
	assert.Equal(t, wait.DefaultPolicy(), settings.Wait)
	assert.Equal(t, "localhost", settings.Host)
	assert.Equal(t, "docker-compose.yml", settings.ComposeFile)
	assert.Empty(t, settings.Source)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "stackup.yaml",
			content: `host: 127.0.0.1
probeTimeout: 250ms
services:
  mysql: {preferred: 3310, min: 3310, max: 3350}
mysqlTest:
  max: 3350
wait:
  attempts: 5
  interval: 1s
composeFile: compose.yaml
`,
		},
		{
			name: "toml",
			file: "stackup.toml",
			content: `host = "127.0.0.1"
probeTimeout = "250ms"
composeFile = "compose.yaml"

[services.mysql]
preferred = 3310
min = 3310
max = 3350

[mysqlTest]
max = 3350

[wait]
attempts = 5
interval = "1s"
`,
		},
		{
			name: "jsonc",
			file: "stackup.jsonc",
			content: `{
  // probe host
  "host": "127.0.0.1",
  "probeTimeout": "250ms",
  "services": {"mysql": {"preferred": 3310, "min": 3310, "max": 3350}},
  "mysqlTest": {"max": 3350},
  /* readiness */
  "wait": {"attempts": 5, "interval": "1s"},
  "composeFile": "compose.yaml",
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			settings, err := Load(dir, "")
			require.NoError(t, err)

			assert.Equal(t, path, settings.Source)
			assert.Equal(t, "127.0.0.1", settings.Host)
			assert.Equal(t, 250*time.Millisecond, settings.ProbeTimeout)
			assert.Equal(t, port.Range{Preferred: 3310, Min: 3310, Max: 3350}, settings.Plan.MySQL)
			assert.Equal(t, 3350, settings.Plan.MySQLTestMax)
			assert.Equal(t, wait.Policy{MaxAttempts: 5, Interval: time.Second}, settings.Wait)
			assert.Equal(t, "compose.yaml", settings.ComposeFile)

			// Untouched services keep their defaults.
			assert.Equal(t, port.DefaultPlan().PHP, settings.Plan.PHP)
			assert.Equal(t, port.DefaultPlan().Nginx, settings.Plan.Nginx)
		})
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stackup.json", `{"services": {"nginx": {"max": 8200}}}`)

	settings, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, port.Range{Preferred: 8080, Min: 8080, Max: 8200}, settings.Plan.Nginx)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "stackup.yml", "")

	settings, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, port.DefaultPlan(), settings.Plan)
}

func TestDiscover_Priority(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, Discover(dir))

	writeFile(t, dir, "stackup.jsonc", "{}")
	assert.Equal(t, filepath.Join(dir, "stackup.jsonc"), Discover(dir))

	writeFile(t, dir, "stackup.toml", "")
	assert.Equal(t, filepath.Join(dir, "stackup.toml"), Discover(dir))

	writeFile(t, dir, "stackup.yaml", "")
	assert.Equal(t, filepath.Join(dir, "stackup.yaml"), Discover(dir))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		detail  string
	}{
		{"unknown yaml key", "stackup.yaml", "servcies: {}\n", "servcies"},
		{"unknown toml key", "stackup.toml", "hots = \"x\"\n", "hots"},
		{"unknown json key", "stackup.json", `{"compose": "x"}`, "compose"},
		{"bad duration", "stackup.yaml", "probeTimeout: soon\n", "soon"},
		{"range inverted", "stackup.yaml", "services:\n  redis: {min: 6400, max: 6300}\n", "services.redis"},
		{"zero attempts", "stackup.toml", "[wait]\nattempts = -1\n", "wait"},
		{"compose outside", "stackup.json", `{"composeFile": "../x.yml"}`, "composeFile"},
		{"unsupported format", "stackup.ini", "x=1", "unsupported settings format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			_, err := Load(dir, path)
			require.Error(t, err)

			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, model.ExitInvalidConfig, cliErr.Code)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, err := Load(t.TempDir(), "/nonexistent/stackup.yaml")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitInvalidConfig, cliErr.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "table", cfg.List.Format)
	assert.Equal(t, 2*time.Second, cfg.TUI.RefreshInterval.Duration())
	assert.True(t, cfg.TUI.ShowHelp)
	assert.Equal(t, 15*time.Second, cfg.Bus.CallTimeout.Duration())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[list]
format = "yaml"

[tui]
refresh_interval = "500ms"
show_help = false

[bus]
call_timeout = 30000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.List.Format)
	assert.Equal(t, 500*time.Millisecond, cfg.TUI.RefreshInterval.Duration())
	assert.False(t, cfg.TUI.ShowHelp)
	assert.Equal(t, 30*time.Second, cfg.Bus.CallTimeout.Duration())
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[list]
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.List.Format)
	assert.True(t, cfg.TUI.ShowHelp)
	assert.Equal(t, DefaultRefreshInterval, cfg.TUI.RefreshInterval.Duration())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", `this is not valid toml [`},
		{"unknown format", "[list]\nformat = \"xml\"\n"},
		{"zero refresh", "[tui]\nrefresh_interval = \"0s\"\n"},
		{"bad duration", "[bus]\ncall_timeout = \"soon\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.List.Format = "json"
	cfg.TUI.RefreshInterval = Duration(5 * time.Second)

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", loaded.List.Format)
	assert.Equal(t, 5*time.Second, loaded.TUI.RefreshInterval.Duration())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/labwin/config.toml", ConfigPath())
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Contains(t, ConfigPath(), filepath.Join("labwin", "config.toml"))
}

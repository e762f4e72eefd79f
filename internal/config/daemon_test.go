package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/labwin/internal/geometry"
	"github.com/jmylchreest/labwin/internal/launcher"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"250", 250 * time.Millisecond, false},
		{"0", 0, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := Duration(1500 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, 1200, cfg.Window.DefaultWidth)
	assert.Equal(t, 800, cfg.Window.DefaultHeight)
	assert.Equal(t, 10*time.Second, cfg.Window.CreationTimeout.Duration())
	assert.Equal(t, []string{"gdk", "sway", "x11"}, cfg.Geometry.Backends)
	assert.Empty(t, cfg.Metrics.Listen)
	assert.Equal(t, "default", cfg.Theme.Name)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDaemonConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadDaemonConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestLoadDaemonConfig_ParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labwind.toml")

	content := `
[window]
default_width = 1024
creation_timeout = "3s"

[geometry]
backends = ["sway"]
fallback_width = 400

[metrics]
listen = "127.0.0.1:9464"

[theme]
name = "compact"

[log]
level = "debug"

[[launcher]]
name = "audit"
label = "audit"
title = "Audit Trail"
content = "payload-view"
singleton = true
edge = "right"
width = 600

[[launcher]]
name = "chat"
label = "chat"
content = "placeholder"
width = 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Window.DefaultWidth)
	assert.Equal(t, 800, cfg.Window.DefaultHeight)
	assert.Equal(t, 3*time.Second, cfg.Window.CreationTimeout.Duration())
	assert.Equal(t, []string{"sway"}, cfg.Geometry.Backends)
	assert.Equal(t, geometry.Size{Width: 400, Height: launcher.DefaultFallbackHeight}, cfg.FallbackSize())
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Listen)
	assert.Equal(t, "compact", cfg.Theme.Name)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	require.Len(t, cfg.Launchers, 2)
	assert.Equal(t, geometry.EdgeRight, cfg.Launchers[0].Edge)
	assert.True(t, cfg.Launchers[0].Singleton)

	presets, err := cfg.Presets()
	require.NoError(t, err)

	chat, err := presets.Resolve("chat")
	require.NoError(t, err)
	assert.Equal(t, 500, chat.Width, "configured preset overrides the built-in one")

	audit, err := presets.Resolve("audit")
	require.NoError(t, err)
	assert.Equal(t, "Audit Trail", audit.Title)

	assert.Equal(t, len(launcher.Builtins())+1, len(presets.Presets()))
}

func TestLoadDaemonConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid toml", `[window`},
		{"zero width", "[window]\ndefault_width = 0\n"},
		{"zero timeout", "[window]\ncreation_timeout = \"0s\"\n"},
		{"bad level", "[log]\nlevel = \"loud\"\n"},
		{"bad fallback", "[geometry]\nfallback_height = -1\n"},
		{"duplicate launcher", "[[launcher]]\nname = \"a\"\n[[launcher]]\nname = \"A\"\n"},
		{"unnamed launcher", "[[launcher]]\nlabel = \"a\"\n"},
		{"bad edge", "[[launcher]]\nname = \"a\"\nedge = \"middle\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "labwind.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadDaemonConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveDaemonConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "labwind.toml")

	cfg := DefaultDaemonConfig()
	cfg.Window.CreationTimeout = Duration(4 * time.Second)
	cfg.Launchers = []launcher.Preset{{Name: "audit", Label: "audit", Edge: geometry.EdgeTop, Height: 300}}

	require.NoError(t, SaveDaemonConfig(path, cfg))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, loaded.Window.CreationTimeout.Duration())
	require.Len(t, loaded.Launchers, 1)
	assert.Equal(t, geometry.EdgeTop, loaded.Launchers[0].Edge)
	assert.Equal(t, 300, loaded.Launchers[0].Height)
}

func TestDaemonConfig_WindowDefaults(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Window.DefaultWidth = 640

	d := cfg.WindowDefaults()
	assert.Equal(t, 640, d.Width)
	assert.Equal(t, 800, d.Height)
}

func TestDaemonConfig_LogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			cfg.Log.Level = tt.level
			assert.Equal(t, tt.want, cfg.LogLevel())
		})
	}
}

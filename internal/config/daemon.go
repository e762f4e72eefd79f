package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/labwin/internal/geometry"
	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/window"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "10s", "1m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '10s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for labwind.
// Loaded from ~/.config/labwin/labwind.toml
type DaemonConfig struct {
	Window    WindowConfig      `toml:"window"`
	Geometry  GeometryConfig    `toml:"geometry"`
	Metrics   MetricsConfig     `toml:"metrics"`
	Theme     ThemeConfig       `toml:"theme"`
	Log       LogConfig         `toml:"log"`
	Launchers []launcher.Preset `toml:"launcher"`
}

// WindowConfig contains window manager settings.
type WindowConfig struct {
	DefaultWidth    int      `toml:"default_width"`
	DefaultHeight   int      `toml:"default_height"`
	CreationTimeout Duration `toml:"creation_timeout"` // e.g. "10s"
}

// GeometryConfig contains display query settings for edge-pinned launchers.
type GeometryConfig struct {
	Backends       []string `toml:"backends"`        // tried in order: gdk, sway, x11
	FallbackWidth  int      `toml:"fallback_width"`  // used when no backend answers
	FallbackHeight int      `toml:"fallback_height"` // used when no backend answers
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Listen string `toml:"listen"` // e.g. "127.0.0.1:9464", empty = disabled
}

// ThemeConfig contains window styling settings.
type ThemeConfig struct {
	Name string `toml:"name"` // bundled theme or ~/.config/labwin/themes/<name>.css
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// ValidLogLevels returns all valid log level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Window: WindowConfig{
			DefaultWidth:    window.DefaultWidth,
			DefaultHeight:   window.DefaultHeight,
			CreationTimeout: Duration(window.DefaultCreationTimeout),
		},
		Geometry: GeometryConfig{
			Backends:       []string{"gdk", geometry.BackendSway, geometry.BackendX11},
			FallbackWidth:  launcher.DefaultFallbackWidth,
			FallbackHeight: launcher.DefaultFallbackHeight,
		},
		Theme: ThemeConfig{
			Name: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "labwin", "labwind.toml"), nil
}

// LoadDaemonConfig loads the daemon configuration from path, or from
// DaemonConfigPath when path is empty. If the file doesn't exist, returns the
// default configuration.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		p, err := DaemonConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to path, or to
// DaemonConfigPath when path is empty.
func SaveDaemonConfig(path string, config *DaemonConfig) error {
	if path == "" {
		p, err := DaemonConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.Window.DefaultWidth <= 0 || c.Window.DefaultHeight <= 0 {
		return fmt.Errorf("default window size must be positive, got %dx%d",
			c.Window.DefaultWidth, c.Window.DefaultHeight)
	}
	if c.Window.CreationTimeout.Duration() <= 0 {
		return fmt.Errorf("creation_timeout must be positive, got %s", c.Window.CreationTimeout.Duration())
	}

	if c.Geometry.FallbackWidth <= 0 || c.Geometry.FallbackHeight <= 0 {
		return fmt.Errorf("fallback geometry must be positive, got %dx%d",
			c.Geometry.FallbackWidth, c.Geometry.FallbackHeight)
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.Log.Level, ValidLogLevels())
	}

	seen := make(map[string]bool, len(c.Launchers))
	for _, p := range c.Launchers {
		if err := p.Validate(); err != nil {
			return err
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("duplicate launcher %q", p.Name)
		}
		seen[key] = true
	}

	return nil
}

// WindowDefaults returns the default size handed to the window manager.
func (c *DaemonConfig) WindowDefaults() window.Defaults {
	return window.Defaults{Width: c.Window.DefaultWidth, Height: c.Window.DefaultHeight}
}

// FallbackSize returns the size of an edge-pinned window when the display
// cannot be queried.
func (c *DaemonConfig) FallbackSize() geometry.Size {
	return geometry.Size{Width: c.Geometry.FallbackWidth, Height: c.Geometry.FallbackHeight}
}

// Presets returns the built-in presets overlaid with the configured ones.
func (c *DaemonConfig) Presets() (*launcher.Registry, error) {
	return launcher.NewRegistry(launcher.Merge(launcher.Builtins(), c.Launchers))
}

// LogLevel returns the configured slog level.
func (c *DaemonConfig) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

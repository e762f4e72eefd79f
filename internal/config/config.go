// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultListFormat      = "table"
	DefaultRefreshInterval = 2 * time.Second
	DefaultCallTimeout     = 15 * time.Second
)

// Config represents the labwin CLI configuration.
type Config struct {
	List ListConfig `toml:"list"`
	TUI  TUIConfig  `toml:"tui"`
	Bus  BusConfig  `toml:"bus"`

	Clipboard ClipboardConfig `toml:"clipboard"`
}

// ListConfig holds defaults for `labwin list`.
type ListConfig struct {
	Format string `toml:"format"` // table, json, yaml
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	RefreshInterval Duration `toml:"refresh_interval"` // e.g. "2s"
	ShowHelp        bool     `toml:"show_help"`
}

// BusConfig holds D-Bus client settings.
type BusConfig struct {
	// CallTimeout bounds each call to labwind. It must exceed the daemon's
	// creation timeout or opens are cut short on the client side.
	CallTimeout Duration `toml:"call_timeout"`
}

// ClipboardConfig holds clipboard settings for the TUI.
type ClipboardConfig struct {
	Command string `toml:"command"` // e.g. "wl-copy", empty = auto-detect
}

// ValidListFormats returns all valid list formats.
func ValidListFormats() []string {
	return []string{"table", "json", "yaml"}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		List: ListConfig{
			Format: DefaultListFormat,
		},
		TUI: TUIConfig{
			RefreshInterval: Duration(DefaultRefreshInterval),
			ShowHelp:        true,
		},
		Bus: BusConfig{
			CallTimeout: Duration(DefaultCallTimeout),
		},
	}
}

// configHome returns XDG_CONFIG_HOME, or ~/.config.
func configHome() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return dir
}

// ConfigPath returns the path to the CLI config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	dir := configHome()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "labwin", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(ValidListFormats(), c.List.Format) {
		return fmt.Errorf("invalid list format %q, must be one of: %v", c.List.Format, ValidListFormats())
	}
	if c.TUI.RefreshInterval.Duration() <= 0 {
		return fmt.Errorf("tui refresh_interval must be positive, got %s", c.TUI.RefreshInterval.Duration())
	}
	if c.Bus.CallTimeout.Duration() <= 0 {
		return fmt.Errorf("bus call_timeout must be positive, got %s", c.Bus.CallTimeout.Duration())
	}
	return nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

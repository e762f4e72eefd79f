package daemon

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/labwin/internal/config"
	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/window"
)

// Apply pushes the reloadable parts of cfg into a running manager and
// launcher: default window size, creation timeout, presets and the pinned
// fallback size. Nothing is changed if the presets are invalid.
func Apply(cfg *config.DaemonConfig, m *window.Manager, l *launcher.Launcher, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	presets, err := cfg.Presets()
	if err != nil {
		return fmt.Errorf("build presets: %w", err)
	}

	m.SetDefaults(cfg.WindowDefaults())
	m.SetCreationTimeout(cfg.Window.CreationTimeout.Duration())
	l.SetPresets(presets)
	l.SetFallback(cfg.FallbackSize())

	logger.Debug("applied configuration",
		"creation_timeout", cfg.Window.CreationTimeout.Duration(),
		"default_width", cfg.Window.DefaultWidth,
		"default_height", cfg.Window.DefaultHeight,
		"presets", len(presets.Presets()),
	)
	return nil
}

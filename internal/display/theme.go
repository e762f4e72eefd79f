package display

import (
	"context"
	"log/slog"
	"sync"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/labwin/internal/theme"
)

// ThemeLoader applies a theme to the default display and keeps it current.
type ThemeLoader struct {
	mu       sync.Mutex
	logger   *slog.Logger
	provider *gtk.CSSProvider
	dir      string
	current  *theme.Theme
	watcher  *theme.Watcher
}

// NewThemeLoader creates a loader reading user themes from theme.Dir. It
// must be called on the GTK main loop.
func NewThemeLoader(logger *slog.Logger) *ThemeLoader {
	if logger == nil {
		logger = slog.Default()
	}
	dir, err := theme.Dir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
	}
	return &ThemeLoader{
		logger:   logger,
		provider: gtk.NewCSSProvider(),
		dir:      dir,
	}
}

// Load resolves name and loads it into the provider. An unknown theme falls
// back to the default. Call on the GTK main loop.
func (l *ThemeLoader) Load(name string) error {
	t, err := theme.Resolve(name, l.dir)
	if err != nil {
		l.logger.Warn("theme not found, using default", "theme", name, "error", err)
		if t, err = theme.Resolve(theme.DefaultThemeName, l.dir); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.current = t
	l.mu.Unlock()

	l.provider.LoadFromString(t.CSS)
	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path)
	return nil
}

// Apply attaches the provider to the default display.
func (l *ThemeLoader) Apply() error {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return ErrNoDisplay
	}
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	return nil
}

// Current returns the name of the loaded theme.
func (l *ThemeLoader) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return ""
	}
	return l.current.Name
}

// StartHotReload polls the loaded theme file and reapplies it on change.
// Bundled themes are not watched.
func (l *ThemeLoader) StartHotReload(ctx context.Context) {
	l.StopHotReload()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || l.current.Builtin() {
		return
	}

	l.watcher = theme.NewWatcher(l.current, func(css string) {
		coreglib.IdleAdd(func() {
			l.provider.LoadFromString(css)
		})
	}, l.logger)
	l.watcher.Start(ctx)
}

// StopHotReload stops watching the theme file.
func (l *ThemeLoader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

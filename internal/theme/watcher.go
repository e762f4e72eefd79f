package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often a Watcher checks the theme file.
const DefaultPollInterval = time.Second

// Watcher polls a file theme and reports new CSS.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger

	theme    *Theme
	interval time.Duration
	onChange func(css string)

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a Watcher for theme. onChange runs on the watcher's
// goroutine.
func NewWatcher(theme *Theme, onChange func(css string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		theme:    theme,
		interval: DefaultPollInterval,
		onChange: onChange,
	}
}

// SetPollInterval sets the polling interval. It takes effect on Start.
func (w *Watcher) SetPollInterval(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interval = d
}

// Start begins polling. Bundled themes are never polled.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.theme == nil || w.theme.Builtin() {
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.loop(ctx, w.interval, w.stopCh, w.doneCh)
	w.logger.Debug("theme watcher started", "path", w.theme.Path, "interval", w.interval)
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
	w.logger.Debug("theme watcher stopped")
}

func (w *Watcher) loop(ctx context.Context, interval time.Duration, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	changed, err := w.theme.Reload()
	if err != nil {
		w.logger.Debug("failed to reload theme", "path", w.theme.Path, "error", err)
		return
	}
	if changed {
		w.logger.Info("theme file changed, reloading", "path", w.theme.Path)
		if w.onChange != nil {
			w.onChange(w.theme.CSS)
		}
	}
}

// Package main is the entry point for the labwind window daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/labwin/internal/config"
	"github.com/jmylchreest/labwin/internal/daemon"
	"github.com/jmylchreest/labwin/internal/dbus"
	"github.com/jmylchreest/labwin/internal/display"
	"github.com/jmylchreest/labwin/internal/geometry"
	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/metrics"
	"github.com/jmylchreest/labwin/internal/window"
)

const (
	appID   = "io.github.jmylchreest.labwind"
	appName = "labwind"

	notifyTimeout = 2 * time.Second
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to labwind.toml (default: ~/.config/labwin/labwind.toml)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	os.Exit(run(cfg, *configPath, logger))
}

// run owns the GTK application and returns its exit status.
func run(cfg *config.DaemonConfig, configPath string, logger *slog.Logger) int {
	logger.Info("starting labwind", "version", version)

	app := adw.NewApplication(appID, 0)

	// Shared between the GTK main loop and the signal handler
	var (
		manager       *window.Manager
		server        *dbus.Server
		themeLoader   *display.ThemeLoader
		configWatcher *daemon.ConfigWatcher
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		glib.IdleAdd(func() {
			if running.Load() {
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		notifier := daemon.NewNotifier(func(n dbus.Notification) error {
			notifyCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()
			_, err := dbus.Notify(notifyCtx, n)
			return err
		}, logger)

		themeLoader = display.NewThemeLoader(logger)
		if err := themeLoader.Load(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme", "error", err)
		}
		if err := themeLoader.Apply(); err != nil {
			logger.Warn("failed to apply theme", "error", err)
		}
		themeLoader.StartHotReload(ctx)

		querier := display.NewMonitorQuerier(logger)
		chain, err := geometry.Build(cfg.Geometry.Backends, map[string]geometry.Querier{
			"gdk": querier,
		})
		if err != nil {
			logger.Error("invalid geometry backends", "error", err)
			app.Quit()
			return
		}

		presets, err := cfg.Presets()
		if err != nil {
			logger.Error("invalid launcher presets", "error", err)
			app.Quit()
			return
		}

		recorder := metrics.NewRecorder()
		server = dbus.NewServer(nil, logger)

		primitive := display.NewPrimitive(&app.Application, display.NewContents(), logger)
		manager = window.NewManager(primitive,
			window.WithLogger(logger),
			window.WithObserver(recorder, server.Observer()),
			window.WithCreationTimeout(cfg.Window.CreationTimeout.Duration()),
			window.WithDefaults(cfg.WindowDefaults()),
		)
		server.SetController(manager)

		l := launcher.New(manager, presets,
			launcher.WithQuerier(chain),
			launcher.WithLogger(logger),
			launcher.WithFallback(cfg.FallbackSize()),
		)
		server.SetLauncher(l)

		if err := server.Start(ctx); err != nil {
			logger.Error("failed to start D-Bus server", "error", err)
			app.Quit()
			return
		}

		if cfg.Metrics.Listen != "" {
			go func() {
				if err := metrics.Serve(ctx, cfg.Metrics.Listen, recorder, logger); err != nil {
					logger.Warn("metrics server stopped", "error", err)
				}
			}()
		}

		configWatcher, err = daemon.NewConfigWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
				glib.IdleAdd(func() {
					if err := daemon.Apply(newConfig, manager, l, logger); err != nil {
						logger.Warn("failed to apply reloaded config", "error", err)
						notifier.NotifyConfigError(err)
						return
					}
					if newConfig.Theme.Name != themeLoader.Current() {
						if err := themeLoader.Load(newConfig.Theme.Name); err != nil {
							logger.Warn("failed to load new theme", "theme", newConfig.Theme.Name, "error", err)
							notifier.NotifyThemeError(err)
						} else {
							themeLoader.StartHotReload(ctx)
						}
					}
					logger.Info("config reloaded")
					notifier.NotifyConfigReloaded()
				})
			})
			configWatcher.SetErrorCallback(func(err error) {
				logger.Warn("config reload rejected", "error", err)
				notifier.NotifyConfigError(err)
			})
			if err := configWatcher.Start(ctx, cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		logger.Info("labwind ready", "dbus_interface", dbus.Interface)

		// GTK quits once its last window closes; keep one hidden window around.
		keepAlive := gtk.NewWindow()
		keepAlive.SetApplication(&app.Application)
		keepAlive.SetDefaultSize(1, 1)
		keepAlive.SetDecorated(false)
		keepAlive.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if server != nil {
			_ = server.Stop()
		}
		if manager != nil {
			if err := manager.CloseAll(); err != nil && !errors.Is(err, display.ErrWindowClosed) {
				logger.Warn("failed to close windows", "error", err)
			}
		}
		running.Store(false)
	})

	// Options were parsed by the flag package; GApplication sees none of them.
	status := app.Run(os.Args[:1])
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
	}
	return status
}

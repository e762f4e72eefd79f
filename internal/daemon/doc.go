// Package daemon provides the orchestration pieces of labwind that sit
// between configuration and the window manager: applying a configuration
// to a running manager and launcher, hot-reloading the config file, and
// telling the user about reloads through desktop notifications.
package daemon

// Package dbus exposes the labwind window manager on the session bus as
// io.github.jmylchreest.Labwin, and provides the client the labwin CLI uses
// to drive it. Payloads travel as JSON strings and are never inspected.
package dbus

// Package theme loads the CSS applied to labwind windows.
package theme

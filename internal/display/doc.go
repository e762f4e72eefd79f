// Package display implements window.Primitive over GTK4 and libadwaita.
package display

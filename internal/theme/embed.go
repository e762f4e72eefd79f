package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

//go:embed themes/*.css
var builtinThemes embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// Builtin returns the CSS of a bundled theme or partial. Partials start with
// an underscore.
func Builtin(name string) (string, bool) {
	name = strings.TrimSuffix(name, ".css")
	data, err := builtinThemes.ReadFile("themes/" + name + ".css")
	if err != nil {
		return "", false
	}
	return string(data), true
}

// BuiltinNames lists the bundled themes, excluding partials.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinThemes, "themes")
	if err != nil {
		return []string{DefaultThemeName}
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".css"))
	}
	return names
}

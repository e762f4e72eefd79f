package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// importRegex matches @import "file.css"; @import 'file.css'; and @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved stylesheet with its imports inlined.
type Theme struct {
	Name    string
	Path    string // empty for bundled themes
	CSS     string
	ModTime time.Time
}

// Builtin reports whether the theme came from the bundled set.
func (t *Theme) Builtin() bool {
	return t.Path == ""
}

// Dir returns the user themes directory, ~/.config/labwin/themes.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "labwin", "themes"), nil
}

// Resolve finds a theme by name: dir/<name>.css first, then the bundled
// themes. An empty name is the default theme.
func Resolve(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	if dir != "" {
		path := filepath.Join(dir, name+".css")
		if _, err := os.Stat(path); err == nil {
			return fromFile(name, path)
		}
	}

	css, ok := Builtin(name)
	if !ok {
		return nil, fmt.Errorf("theme %q not found", name)
	}
	return &Theme{Name: name, CSS: ProcessImports(css, "", nil)}, nil
}

func fromFile(name, path string) (*Theme, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     ProcessImports(string(css), filepath.Dir(path), nil),
		ModTime: info.ModTime(),
	}, nil
}

// ProcessImports inlines @import statements, resolving relative paths
// against baseDir and falling back to bundled themes and partials. seen
// guards against import cycles.
func ProcessImports(css, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) {
			fullPath = filepath.Join(baseDir, importPath)
		}
		if seen[fullPath] {
			return "/* circular import skipped: " + importPath + " */"
		}
		seen[fullPath] = true

		data, err := os.ReadFile(fullPath)
		if err != nil {
			if builtin, ok := Builtin(filepath.Base(importPath)); ok {
				return "/* imported (builtin): " + importPath + " */\n" + ProcessImports(builtin, "", seen)
			}
			return "/* import failed: " + importPath + " */"
		}

		return "/* imported: " + importPath + " */\n" + ProcessImports(string(data), filepath.Dir(fullPath), seen)
	})
}

// Reload re-reads a file theme. It reports whether the CSS changed.
func (t *Theme) Reload() (bool, error) {
	if t.Builtin() {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := fromFile(t.Name, t.Path)
	if err != nil {
		return false, err
	}
	changed := fresh.CSS != t.CSS
	t.CSS = fresh.CSS
	t.ModTime = fresh.ModTime
	return changed, nil
}

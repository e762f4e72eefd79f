package theme

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	css, ok := Builtin(DefaultThemeName)
	require.True(t, ok)
	assert.Contains(t, css, "labwin-window")

	_, ok = Builtin("_palette.css")
	assert.True(t, ok)

	_, ok = Builtin("nope")
	assert.False(t, ok)
}

func TestBuiltinNames(t *testing.T) {
	names := BuiltinNames()
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "compact")
	assert.NotContains(t, names, "_palette")
}

func TestProcessImports_NoImports(t *testing.T) {
	css := `.payload-view { color: red; }`
	assert.Equal(t, css, ProcessImports(css, "", nil))
}

func TestProcessImports_Nested(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_inner.css"), []byte(`.inner { color: blue; }`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_outer.css"), []byte("@import \"_inner.css\";\n.outer {}"), 0o644))

	got := ProcessImports("@import url(\"_outer.css\");\n.main {}", dir, nil)

	assert.Contains(t, got, "/* imported: _outer.css */")
	assert.Contains(t, got, "/* imported: _inner.css */")
	assert.Contains(t, got, ".inner")
	assert.Contains(t, got, ".outer")
	assert.Contains(t, got, ".main")
}

func TestProcessImports_Circular(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_a.css"), []byte("@import \"_b.css\";\n.a {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_b.css"), []byte("@import \"_a.css\";\n.b {}"), 0o644))

	got := ProcessImports(`@import "_a.css";`, dir, nil)

	assert.Contains(t, got, "circular import skipped")
	assert.Contains(t, got, ".a")
	assert.Contains(t, got, ".b")
}

func TestProcessImports_BuiltinFallback(t *testing.T) {
	got := ProcessImports(`@import "_palette.css";`, t.TempDir(), nil)
	assert.Contains(t, got, "/* imported (builtin): _palette.css */")
	assert.Contains(t, got, "--window-bg")
}

func TestProcessImports_Missing(t *testing.T) {
	got := ProcessImports(`@import "_missing.css";`, t.TempDir(), nil)
	assert.Contains(t, got, "/* import failed: _missing.css */")
}

func TestResolve(t *testing.T) {
	t.Run("builtin", func(t *testing.T) {
		th, err := Resolve("compact", "")
		require.NoError(t, err)
		assert.True(t, th.Builtin())
		assert.Contains(t, th.CSS, "--window-bg")
		assert.Contains(t, th.CSS, "font-size: 0.9em")
	})

	t.Run("empty name is default", func(t *testing.T) {
		th, err := Resolve("", "")
		require.NoError(t, err)
		assert.Equal(t, DefaultThemeName, th.Name)
	})

	t.Run("user theme overrides builtin", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "default.css"), []byte(`.mine {}`), 0o644))

		th, err := Resolve("default", dir)
		require.NoError(t, err)
		assert.False(t, th.Builtin())
		assert.Equal(t, `.mine {}`, th.CSS)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Resolve("nope", t.TempDir())
		assert.ErrorContains(t, err, `theme "nope" not found`)
	})
}

func TestTheme_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.css")
	require.NoError(t, os.WriteFile(path, []byte(`.v1 {}`), 0o644))

	th, err := Resolve("lab", dir)
	require.NoError(t, err)

	changed, err := th.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte(`.v2 {}`), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, err = th.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, `.v2 {}`, th.CSS)

	builtin, err := Resolve("default", "")
	require.NoError(t, err)
	changed, err = builtin.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.css")
	require.NoError(t, os.WriteFile(path, []byte(`.v1 {}`), 0o644))

	th, err := Resolve("lab", dir)
	require.NoError(t, err)

	changes := make(chan string, 1)
	w := NewWatcher(th, func(css string) {
		select {
		case changes <- css:
		default:
		}
	}, nil)
	w.SetPollInterval(10 * time.Millisecond)
	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`.v2 {}`), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	select {
	case css := <-changes:
		assert.Equal(t, `.v2 {}`, css)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestWatcher_BuiltinNotStarted(t *testing.T) {
	th, err := Resolve("default", "")
	require.NoError(t, err)

	w := NewWatcher(th, nil, nil)
	w.Start(context.Background())
	w.Stop()
}

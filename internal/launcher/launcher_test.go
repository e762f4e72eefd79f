package launcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/labwin/internal/geometry"
	"github.com/jmylchreest/labwin/internal/window"
	"github.com/jmylchreest/labwin/internal/window/windowtest"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func builtinRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(Builtins())
	require.NoError(t, err)
	return r
}

func TestRegistry_Resolve(t *testing.T) {
	r := builtinRegistry(t)

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr error
	}{
		{name: "exact", query: "vehicle-log", want: "vehicle-log"},
		{name: "case insensitive", query: "Chain-Of-Custody", want: "chain-of-custody"},
		{name: "fuzzy", query: "intake", want: "sample-intake"},
		{name: "unknown", query: "zzz", wantErr: ErrUnknownPreset},
		{name: "empty", query: " ", wantErr: ErrUnknownPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Resolve(tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestRegistry_ResolveAmbiguous(t *testing.T) {
	r, err := NewRegistry([]Preset{{Name: "log-a"}, {Name: "log-b"}})
	require.NoError(t, err)

	_, err = r.Resolve("log")
	assert.ErrorIs(t, err, ErrAmbiguousPreset)
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		presets []Preset
	}{
		{"empty name", []Preset{{Name: ""}}},
		{"duplicate", []Preset{{Name: "chat"}, {Name: "Chat"}}},
		{"negative size", []Preset{{Name: "chat", Width: -1}}},
		{"bad edge", []Preset{{Name: "chat", Edge: "middle"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.presets)
			assert.Error(t, err)
		})
	}
}

func TestMerge(t *testing.T) {
	base := []Preset{{Name: "a", Title: "A"}, {Name: "b", Title: "B"}}
	merged := Merge(base, []Preset{{Name: "b", Title: "B2"}, {Name: "c", Title: "C"}})

	require.Len(t, merged, 3)
	assert.Equal(t, "A", merged[0].Title)
	assert.Equal(t, "B2", merged[1].Title)
	assert.Equal(t, "C", merged[2].Title)
	assert.Equal(t, "B", base[1].Title, "base is not modified")
}

func TestBuiltinsAreValid(t *testing.T) {
	for _, p := range Builtins() {
		assert.NoError(t, p.Validate(), p.Name)
	}
}

func TestLauncher_Launch(t *testing.T) {
	p := windowtest.NewPrimitive()
	m := window.NewManager(p, window.WithLogger(testLogger))
	l := New(m, builtinRegistry(t), WithLogger(testLogger))
	ctx := context.Background()

	h, err := l.Launch(ctx, "sample-intake", map[string]any{"sample_id": "S-1"})
	require.NoError(t, err)
	assert.Equal(t, "sample-intake-1", h.InstanceLabel)
	assert.Equal(t, window.HandshakeAwaitingReady, h.HandshakeState())

	opts := p.Window("sample-intake-1").Options()
	assert.Equal(t, "Sample Intake", opts.Title)
	assert.Equal(t, "payload-view", opts.Content)
	assert.Equal(t, 900, opts.Width)
	assert.Equal(t, 700, opts.Height)

	again, err := l.Launch(ctx, "instrument-calibration", nil)
	require.NoError(t, err)
	assert.Equal(t, "calibration", again.InstanceLabel)
	assert.True(t, m.IsOpen("calibration"))
}

func TestLauncher_LaunchUnknown(t *testing.T) {
	p := windowtest.NewPrimitive()
	l := New(window.NewManager(p), builtinRegistry(t), WithLogger(testLogger))

	_, err := l.Launch(context.Background(), "zzz", nil)
	assert.ErrorIs(t, err, ErrUnknownPreset)
	assert.Equal(t, 0, p.Constructs())
}

func TestLauncher_LaunchCreationFailure(t *testing.T) {
	p := windowtest.NewPrimitive()
	p.SetMode(windowtest.RejectConstruct)
	l := New(window.NewManager(p, window.WithLogger(testLogger)), builtinRegistry(t), WithLogger(testLogger))

	_, err := l.Launch(context.Background(), "chat", nil)
	assert.ErrorIs(t, err, window.ErrCreationFailed)
}

func TestLauncher_ConfigPinned(t *testing.T) {
	monitor := geometry.Monitor{Name: "DP-1", Rect: geometry.Rect{Width: 1920, Height: 1080}, Focused: true}
	q := geometry.QuerierFunc(func(context.Context) ([]geometry.Monitor, error) {
		return []geometry.Monitor{monitor}, nil
	})
	l := New(nil, builtinRegistry(t), WithQuerier(q), WithLogger(testLogger))

	preset, err := l.Resolve("chain-of-custody")
	require.NoError(t, err)

	cfg := l.Config(context.Background(), preset, "data")
	assert.Equal(t, "chain-of-custody", cfg.Label)
	assert.True(t, cfg.Singleton)
	assert.Equal(t, "data", cfg.Payload)
	assert.Equal(t, window.AnchorRight, cfg.Geometry.Anchor)
	assert.Equal(t, 520, cfg.Geometry.Width)
	assert.Equal(t, 1080, cfg.Geometry.Height)
	require.NotNil(t, cfg.Geometry.Position)
	assert.Equal(t, window.Point{X: 1400, Y: 0}, *cfg.Geometry.Position)
}

func TestLauncher_ConfigPinnedFallback(t *testing.T) {
	q := geometry.QuerierFunc(func(context.Context) ([]geometry.Monitor, error) {
		return nil, errors.New("no compositor")
	})
	l := New(nil, builtinRegistry(t),
		WithQuerier(q),
		WithLogger(testLogger),
		WithFallback(geometry.Size{Height: 700}),
	)

	preset, err := l.Resolve("inspection-checklist")
	require.NoError(t, err)

	cfg := l.Config(context.Background(), preset, nil)
	assert.Equal(t, 480, cfg.Geometry.Width)
	assert.Equal(t, 700, cfg.Geometry.Height)
	require.NotNil(t, cfg.Geometry.Position)
	assert.Equal(t, window.Point{}, *cfg.Geometry.Position)
	assert.Equal(t, window.AnchorLeft, cfg.Geometry.Anchor)
}

func TestLauncher_SetPresets(t *testing.T) {
	l := New(nil, builtinRegistry(t), WithLogger(testLogger))

	custom, err := NewRegistry([]Preset{{Name: "audit", Singleton: true}})
	require.NoError(t, err)
	l.SetPresets(custom)

	require.Len(t, l.Presets(), 1)
	p, err := l.Resolve("audit")
	require.NoError(t, err)
	assert.Equal(t, "audit", p.label())

	_, err = l.Resolve("vehicle-log")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

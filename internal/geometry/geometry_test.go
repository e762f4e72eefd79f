package geometry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixed(monitors ...Monitor) Querier {
	return QuerierFunc(func(context.Context) ([]Monitor, error) {
		return monitors, nil
	})
}

func failing(err error) Querier {
	return QuerierFunc(func(context.Context) ([]Monitor, error) {
		return nil, err
	})
}

func TestPlace(t *testing.T) {
	area := Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}

	tests := []struct {
		name string
		edge Edge
		size Size
		want Rect
	}{
		{"left", EdgeLeft, Size{Width: 480}, Rect{X: 1920, Y: 0, Width: 480, Height: 1440}},
		{"right", EdgeRight, Size{Width: 480}, Rect{X: 4000, Y: 0, Width: 480, Height: 1440}},
		{"top", EdgeTop, Size{Height: 300}, Rect{X: 1920, Y: 0, Width: 2560, Height: 300}},
		{"bottom", EdgeBottom, Size{Height: 300}, Rect{X: 1920, Y: 1140, Width: 2560, Height: 300}},
		{"oversized clamps to monitor", EdgeLeft, Size{Width: 9000}, Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}},
		{"no edge centers", EdgeNone, Size{Width: 1200, Height: 800}, Rect{X: 2600, Y: 320, Width: 1200, Height: 800}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Place(area, tt.edge, tt.size))
		})
	}
}

func TestFocused(t *testing.T) {
	_, ok := Focused(nil)
	assert.False(t, ok)

	a := Monitor{Name: "DP-1"}
	b := Monitor{Name: "HDMI-A-1", Focused: true}

	m, ok := Focused([]Monitor{a, b})
	require.True(t, ok)
	assert.Equal(t, "HDMI-A-1", m.Name)

	m, ok = Focused([]Monitor{a})
	require.True(t, ok)
	assert.Equal(t, "DP-1", m.Name)
}

func TestChain(t *testing.T) {
	boom := errors.New("no sway socket")
	want := Monitor{Name: "eDP-1", Rect: Rect{Width: 1920, Height: 1080}}

	monitors, err := Chain{failing(boom), fixed(), fixed(want)}.Monitors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Monitor{want}, monitors)

	_, err = Chain{failing(boom), fixed()}.Monitors(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrNoMonitors)

	_, err = Chain{}.Monitors(context.Background())
	assert.ErrorIs(t, err, ErrNoMonitors)
}

func TestChain_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	q := QuerierFunc(func(context.Context) ([]Monitor, error) {
		called = true
		return nil, nil
	})

	_, err := Chain{q}.Monitors(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestPin(t *testing.T) {
	fallback := Rect{X: 0, Y: 0, Width: 480, Height: 900}
	size := Size{Width: 600}
	ctx := context.Background()

	t.Run("uses focused monitor", func(t *testing.T) {
		q := fixed(
			Monitor{Name: "DP-1", Rect: Rect{Width: 1920, Height: 1080}},
			Monitor{Name: "DP-2", Rect: Rect{X: 1920, Width: 1920, Height: 1080}, Focused: true},
		)
		got := Pin(ctx, q, EdgeRight, size, fallback, testLogger)
		assert.Equal(t, Rect{X: 3240, Y: 0, Width: 600, Height: 1080}, got)
	})

	t.Run("query failure falls back", func(t *testing.T) {
		got := Pin(ctx, failing(errors.New("no display")), EdgeRight, size, fallback, testLogger)
		assert.Equal(t, fallback, got)
	})

	t.Run("empty answer falls back", func(t *testing.T) {
		got := Pin(ctx, fixed(), EdgeLeft, size, fallback, testLogger)
		assert.Equal(t, fallback, got)
	})

	t.Run("zero sized monitor falls back", func(t *testing.T) {
		got := Pin(ctx, fixed(Monitor{Name: "ghost"}), EdgeLeft, size, fallback, testLogger)
		assert.Equal(t, fallback, got)
	})

	t.Run("nil querier falls back", func(t *testing.T) {
		assert.Equal(t, fallback, Pin(ctx, nil, EdgeLeft, size, fallback, nil))
	})
}

func TestParseEdge(t *testing.T) {
	tests := []struct {
		input   string
		want    Edge
		wantErr bool
	}{
		{"", EdgeNone, false},
		{"left", EdgeLeft, false},
		{" Right ", EdgeRight, false},
		{"TOP", EdgeTop, false},
		{"bottom", EdgeBottom, false},
		{"middle", EdgeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEdge(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild(t *testing.T) {
	gdk := fixed(Monitor{Name: "gdk"})

	chain, err := Build([]string{"gdk", "sway", "X11"}, map[string]Querier{"gdk": gdk})
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.IsType(t, SwayQuerier{}, chain[1])
	assert.IsType(t, X11Querier{}, chain[2])

	_, err = Build([]string{"wayland"}, nil)
	assert.Error(t, err)
}

func TestMarkFocused(t *testing.T) {
	monitors := []Monitor{
		{Name: "left", Rect: Rect{Width: 1920, Height: 1080}},
		{Name: "right", Rect: Rect{X: 1920, Width: 1920, Height: 1080}},
	}

	markFocused(monitors, 2000, 10)

	assert.False(t, monitors[0].Focused)
	assert.True(t, monitors[1].Focused)
}

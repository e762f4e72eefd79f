package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/labwin/internal/window"
	"github.com/jmylchreest/labwin/internal/window/windowtest"
)

func TestFromHandle(t *testing.T) {
	m := window.NewManager(windowtest.NewPrimitive())
	h, err := m.Open(context.Background(), window.Config{Label: "chat"})
	require.NoError(t, err)

	info := FromHandle(h)
	assert.Equal(t, h.ID, info.ID)
	assert.Equal(t, "chat", info.Label)
	assert.Equal(t, "chat-1", info.Instance)
	assert.False(t, info.Singleton)
	assert.Equal(t, h.OpenedAt.Unix(), info.OpenedAt)
	assert.NoError(t, info.Validate())

	infos := FromHandles(m.List())
	assert.Equal(t, []WindowInfo{info}, infos)
}

func TestWindowInfo_Validate(t *testing.T) {
	tests := []struct {
		name string
		info WindowInfo
		want error
	}{
		{"valid", WindowInfo{ID: "01H", Label: "a", Instance: "a"}, nil},
		{"no id", WindowInfo{Label: "a", Instance: "a"}, ErrEmptyID},
		{"no label", WindowInfo{ID: "01H", Instance: "a"}, ErrEmptyLabel},
		{"no instance", WindowInfo{ID: "01H", Label: "a"}, ErrEmptyInstance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.info.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWindowInfo_Age(t *testing.T) {
	info := WindowInfo{OpenedAt: time.Now().Add(-3 * time.Minute).Unix()}
	assert.Equal(t, "3 minutes ago", info.Age())
}

func TestWindowInfo_Mode(t *testing.T) {
	assert.Equal(t, "singleton", WindowInfo{Singleton: true}.Mode())
	assert.Equal(t, "multi", WindowInfo{}.Mode())
}

func TestWindowInfo_Matches(t *testing.T) {
	info := WindowInfo{Label: "sample-intake", Instance: "sample-intake-2"}

	assert.True(t, info.Matches(""))
	assert.True(t, info.Matches("INTAKE"))
	assert.True(t, info.Matches("-2"))
	assert.False(t, info.Matches("chat"))
}

func TestSortByOpened(t *testing.T) {
	infos := []WindowInfo{
		{Instance: "c-1", OpenedAt: 30},
		{Instance: "b-1", OpenedAt: 10},
		{Instance: "a", OpenedAt: 10},
		{Instance: "d", OpenedAt: 20},
	}

	SortByOpened(infos)

	var got []string
	for _, i := range infos {
		got = append(got, i.Instance)
	}
	assert.Equal(t, []string{"a", "b-1", "d", "c-1"}, got)
}

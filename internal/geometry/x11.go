package geometry

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// X11Querier lists monitors through XRandR. The focused monitor is the one
// under the pointer.
type X11Querier struct{}

// Monitors implements Querier.
func (X11Querier) Monitors(ctx context.Context) ([]Monitor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	defer xu.Conn().Close()

	conn := xu.Conn()
	root := xu.RootWin()

	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, root).Reply()
	if err != nil {
		return nil, fmt.Errorf("get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			Name: name,
			Rect: Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}

	if pointer, err := xproto.QueryPointer(conn, root).Reply(); err == nil {
		markFocused(monitors, int(pointer.RootX), int(pointer.RootY))
	}
	return monitors, nil
}

// markFocused flags the first monitor containing the point.
func markFocused(monitors []Monitor, x, y int) {
	for i := range monitors {
		if monitors[i].Rect.Contains(x, y) {
			monitors[i].Focused = true
			return
		}
	}
}

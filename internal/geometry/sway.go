package geometry

import (
	"context"
	"fmt"

	"github.com/joshuarubin/go-sway"
)

// SwayQuerier lists outputs over the sway IPC socket.
type SwayQuerier struct{}

// Monitors implements Querier. The focused output is the one holding the
// focused workspace.
func (SwayQuerier) Monitors(ctx context.Context) ([]Monitor, error) {
	client, err := sway.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to sway: %w", err)
	}

	outputs, err := client.GetOutputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sway outputs: %w", err)
	}

	focused := ""
	if workspaces, err := client.GetWorkspaces(ctx); err == nil {
		for _, ws := range workspaces {
			if ws.Focused {
				focused = ws.Output
				break
			}
		}
	}

	var monitors []Monitor
	for _, out := range outputs {
		if !out.Active {
			continue
		}
		monitors = append(monitors, Monitor{
			Name: out.Name,
			Rect: Rect{
				X:      int(out.Rect.X),
				Y:      int(out.Rect.Y),
				Width:  int(out.Rect.Width),
				Height: int(out.Rect.Height),
			},
			Focused: out.Name == focused,
		})
	}
	return monitors, nil
}

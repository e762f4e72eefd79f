package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jmylchreest/labwin/internal/config"
)

// copyText copies text to the system clipboard.
func copyText(text string, cfg *config.Config) error {
	cmd := detectClipboardCommand(cfg, exec.LookPath)
	if cmd == "" {
		return fmt.Errorf("no clipboard command available")
	}

	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return fmt.Errorf("invalid clipboard command %q", cmd)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}

// detectClipboardCommand returns the configured clipboard command, or the
// first of wl-copy, xclip and xsel found by lookPath.
func detectClipboardCommand(cfg *config.Config, lookPath func(string) (string, error)) string {
	if cfg != nil && cfg.Clipboard.Command != "" {
		return cfg.Clipboard.Command
	}

	candidates := []struct{ bin, cmd string }{
		{"wl-copy", "wl-copy"},
		{"xclip", "xclip -selection clipboard"},
		{"xsel", "xsel --clipboard --input"},
	}
	for _, c := range candidates {
		if _, err := lookPath(c.bin); err == nil {
			return c.cmd
		}
	}
	return ""
}

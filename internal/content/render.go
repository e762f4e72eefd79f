package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmptyPayload is shown when a window has no payload.
const EmptyPayload = "(no payload)"

// Render formats a payload as YAML for display.
func Render(payload any) (string, error) {
	if payload == nil {
		return EmptyPayload, nil
	}
	if s, ok := payload.(string); ok {
		return s, nil
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("render payload: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// payloadOpts are shared by open and launch.
type payloadOpts struct {
	inline string
	file   string
}

// read returns the payload from --payload or --payload-file. JSON is read as
// YAML. A file of "-" reads stdin.
func (o payloadOpts) read(stdin io.Reader) (any, error) {
	if o.inline != "" && o.file != "" {
		return nil, fmt.Errorf("--payload and --payload-file are mutually exclusive")
	}

	var data []byte
	switch {
	case o.inline != "":
		data = []byte(o.inline)
	case o.file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		data = b
	case o.file != "":
		b, err := os.ReadFile(o.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		data = b
	default:
		return nil, nil
	}

	return parsePayload(data)
}

// parsePayload decodes a YAML or JSON document. An empty document is no payload.
func parsePayload(data []byte) (any, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var payload any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return payload, nil
}

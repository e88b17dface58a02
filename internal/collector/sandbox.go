package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fakeyudi/statusline/internal/session"
)

// SandboxState is a tri-state flag read from the user's settings.
type SandboxState int

const (
	SandboxUnknown SandboxState = iota
	SandboxEnabled
	SandboxDisabled
)

func (s SandboxState) String() string {
	switch s {
	case SandboxEnabled:
		return "enabled"
	case SandboxDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// DefaultSettingsPath returns ~/.claude/settings.local.json.
func DefaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "settings.local.json"), nil
}

// SandboxCollector reads sandbox.enabled from the user's local settings file.
type SandboxCollector struct {
	SettingsPath string // if empty, uses DefaultSettingsPath
}

// Collect implements Collector. A missing file is silently unknown; an
// unreadable or malformed file is unknown with one warning.
func (c *SandboxCollector) Collect(_ context.Context, _ *session.Snapshot) (CollectorResult, error) {
	path := c.SettingsPath
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return CollectorResult{}, nil
		}
		path = p
	}

	state, err := ReadSandboxState(path)
	if err != nil {
		return CollectorResult{
			Warnings: []string{"Error reading sandbox settings: " + err.Error()},
		}, nil
	}
	return CollectorResult{Sandbox: state}, nil
}

// ReadSandboxState reads the settings file at path. It returns SandboxUnknown
// with a nil error when the file does not exist.
func ReadSandboxState(path string) (SandboxState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SandboxUnknown, nil
		}
		return SandboxUnknown, err
	}

	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		return SandboxUnknown, fmt.Errorf("parsing %s: %w", path, err)
	}

	raw, ok := settings["sandbox"]
	if !ok {
		return SandboxUnknown, nil
	}
	var sandbox map[string]any
	if err := json.Unmarshal(raw, &sandbox); err != nil {
		// sandbox present but not an object
		return SandboxUnknown, nil
	}
	switch enabled := sandbox["enabled"].(type) {
	case bool:
		if enabled {
			return SandboxEnabled, nil
		}
		return SandboxDisabled, nil
	default:
		return SandboxUnknown, nil
	}
}

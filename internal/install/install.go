// Package install registers the status line command in the host's settings file.
package install

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Key is the settings key holding the status line configuration.
const Key = "statusLine"

// StatusLine is the block written under Key.
type StatusLine struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Padding int    `json:"padding"`
}

// SettingsPath returns the host's user settings file.
func SettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

// DefaultCommand returns the command line that renders the status line with
// the currently running binary.
func DefaultCommand() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(exe, " \t") {
		exe = `"` + exe + `"`
	}
	return exe + " render", nil
}

// Install merges a command status line block into the settings file at path.
// Other keys are kept as they are. A missing file is created; a file that is
// not a JSON object is left untouched and reported as an error.
func Install(path, command string, padding int) error {
	if command == "" {
		return fmt.Errorf("empty status line command")
	}
	settings, err := readSettings(path)
	if err != nil {
		return err
	}
	block, err := json.Marshal(StatusLine{Type: "command", Command: command, Padding: padding})
	if err != nil {
		return err
	}
	settings[Key] = block
	return writeSettings(path, settings)
}

// Uninstall removes the status line block. It reports whether one was present.
func Uninstall(path string) (bool, error) {
	settings, err := readSettings(path)
	if err != nil {
		return false, err
	}
	if _, ok := settings[Key]; !ok {
		return false, nil
	}
	delete(settings, Key)
	return true, writeSettings(path, settings)
}

// Current returns the installed status line block, or nil when none is set.
func Current(path string) (*StatusLine, error) {
	settings, err := readSettings(path)
	if err != nil {
		return nil, err
	}
	raw, ok := settings[Key]
	if !ok {
		return nil, nil
	}
	var sl StatusLine
	if err := json.Unmarshal(raw, &sl); err != nil {
		return nil, fmt.Errorf("malformed %s in %s: %w", Key, path, err)
	}
	return &sl, nil
}

func readSettings(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("malformed settings at %s: %w", path, err)
	}
	if settings == nil {
		// literal null
		settings = map[string]json.RawMessage{}
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing settings: %w", err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Package session parses the session snapshot the host pipes to the status line.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// DefaultModelName is shown when the snapshot carries no model display name.
const DefaultModelName = "Claude"

var (
	// ErrMalformed is returned by Parse when the input is not valid JSON.
	ErrMalformed = errors.New("malformed session snapshot")
	// ErrNotObject is returned by Parse when the input is valid JSON but not an object.
	ErrNotObject = errors.New("session snapshot is not a JSON object")
)

// Snapshot is one JSON document describing the current session state.
// Every field is optional; absent and null fields decode to nil or "".
type Snapshot struct {
	Model         *Model         `json:"model"`
	ContextWindow *ContextWindow `json:"context_window"`
	Workspace     *Workspace     `json:"workspace"`
	Version       string         `json:"version"`

	// Raw is the input document exactly as received, kept for the audit log.
	Raw json.RawMessage `json:"-"`
}

// Model identifies the model serving the session.
type Model struct {
	ID          string  `json:"id,omitempty"`
	DisplayName *string `json:"display_name"`
}

// ContextWindow describes how much of the token budget is consumed.
type ContextWindow struct {
	UsedPercentage    *float64 `json:"used_percentage"`
	ContextWindowSize *float64 `json:"context_window_size"`
}

// Workspace holds the session's directories.
type Workspace struct {
	CurrentDir string `json:"current_dir"`
	ProjectDir string `json:"project_dir,omitempty"`
}

// Parse decodes data into a Snapshot.
// Invalid JSON yields an error wrapping ErrMalformed. A non-object document
// yields ErrNotObject, and known fields of the wrong shape yield a decode error.
func Parse(data []byte) (*Snapshot, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, ErrNotObject
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session snapshot: %w", err)
	}
	s.Raw = json.RawMessage(bytes.Clone(bytes.TrimSpace(data)))
	return &s, nil
}

// ModelName returns the model display name, or fallback when absent.
func (s *Snapshot) ModelName(fallback string) string {
	if s.Model == nil || s.Model.DisplayName == nil {
		return fallback
	}
	return *s.Model.DisplayName
}

// UsedPercentage reports context_window.used_percentage if present.
func (s *Snapshot) UsedPercentage() (float64, bool) {
	if s.ContextWindow == nil || s.ContextWindow.UsedPercentage == nil {
		return 0, false
	}
	return *s.ContextWindow.UsedPercentage, true
}

// ContextWindowSize reports context_window.context_window_size if present.
// Fractional sizes are truncated; sizes outside the int64 range count as absent.
func (s *Snapshot) ContextWindowSize() (int64, bool) {
	if s.ContextWindow == nil || s.ContextWindow.ContextWindowSize == nil {
		return 0, false
	}
	return FloorInt64(*s.ContextWindow.ContextWindowSize)
}

// FloorInt64 floors f, reporting false when the result does not fit in an int64.
func FloorInt64(f float64) (int64, bool) {
	f = math.Floor(f)
	if !(f >= math.MinInt64 && f < math.MaxInt64) {
		return 0, false
	}
	return int64(f), true
}

// CurrentDir returns workspace.current_dir, or "" when absent.
func (s *Snapshot) CurrentDir() string {
	if s.Workspace == nil {
		return ""
	}
	return s.Workspace.CurrentDir
}

// Package audit records every rendered status line together with its input.
package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// DefaultPath is the log location relative to the working directory.
var DefaultPath = filepath.Join(".claude", "data", "logs", "status_line.json")

// Format selects the on-disk layout of the log.
type Format string

const (
	// FormatArray stores one indented JSON array, rewritten on every append.
	FormatArray Format = "array"
	// FormatJSONL stores one compact JSON object per line, appended in place.
	FormatJSONL Format = "jsonl"
)

// Entry is one rendered status line.
type Entry struct {
	ID               string          `json:"id,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
	InputData        json.RawMessage `json:"input_data"`
	StatusLineOutput string          `json:"status_line_output"`
}

// NewEntry stamps an entry for input and output with a fresh id and the current time.
func NewEntry(input json.RawMessage, output string) Entry {
	return Entry{
		ID:               uuid.NewString(),
		Timestamp:        time.Now(),
		InputData:        input,
		StatusLineOutput: output,
	}
}

// Log persists entries.
type Log interface {
	Append(e Entry) error
	// Records returns every stored record undecoded, oldest first.
	// Missing or corrupt storage yields an empty slice.
	Records() ([]json.RawMessage, error)
	Clear() error
	Path() string
}

// Open returns the Log for path in the given format.
func Open(path string, format Format) (Log, error) {
	if path == "" {
		path = DefaultPath
	}
	switch format {
	case "", FormatArray:
		return &arrayLog{path: path}, nil
	case FormatJSONL:
		return &jsonlLog{path: path}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q (supported: array, jsonl)", format)
	}
}

// Entries decodes the records of l, skipping any that DecodeEntry rejects.
func Entries(l Log) ([]Entry, error) {
	records, err := l.Records()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if e, ok := DecodeEntry(r); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// DecodeEntry decodes one record. Records that are not objects or carry no
// timestamp are not entries.
func DecodeEntry(raw json.RawMessage) (Entry, bool) {
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Timestamp.IsZero() {
		return Entry{}, false
	}
	return e, true
}

// arrayLog keeps the whole log as one JSON array. Each append is a full
// read-modify-write, so concurrent writers can lose entries.
type arrayLog struct {
	path string
}

func (a *arrayLog) Path() string { return a.path }

// Records loads the array. A missing file or content that is not a JSON
// array counts as empty.
func (a *arrayLog) Records() ([]json.RawMessage, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read status line log: %w", err)
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil || records == nil {
		return []json.RawMessage{}, nil
	}
	return records, nil
}

func (a *arrayLog) Append(e Entry) error {
	records, err := a.Records()
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}
	return a.write(append(records, data))
}

func (a *arrayLog) Clear() error {
	return a.write([]json.RawMessage{})
}

// write marshals records with 2-space indentation and replaces the file
// atomically via a temp file + os.Rename.
func (a *arrayLog) write(records []json.RawMessage) (err error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist status line log: %w", err)
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(dir, "status_line-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist status line log: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist status line log: %w", err)
	}
	// CreateTemp uses 0600; keep the mode the log already has.
	if err = tmp.Chmod(fileMode(a.path)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist status line log: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist status line log: %w", err)
	}
	if err = os.Rename(tmpName, a.path); err != nil {
		return fmt.Errorf("failed to persist status line log: %w", err)
	}
	return nil
}

// fileMode returns the permissions of the file at path, or 0644 when it
// does not exist yet.
func fileMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// jsonlLog appends one record per line with O_APPEND, so each append is a
// single write regardless of log size.
type jsonlLog struct {
	path string
}

func (j *jsonlLog) Path() string { return j.path }

func (j *jsonlLog) Append(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open status line log: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("failed to append status line log: %w", err)
	}
	return f.Close()
}

// Records returns each line that holds a JSON value; other lines are skipped.
func (j *jsonlLog) Records() ([]json.RawMessage, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read status line log: %w", err)
	}
	records := []json.RawMessage{}
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		records = append(records, json.RawMessage(line))
	}
	return records, nil
}

func (j *jsonlLog) Clear() error {
	if err := os.Truncate(j.path, 0); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear status line log: %w", err)
	}
	return nil
}

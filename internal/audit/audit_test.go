package audit_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/statusline/internal/audit"
)

func openLog(t *testing.T, format audit.Format) audit.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "logs", "status_line.json")
	l, err := audit.Open(path, format)
	require.NoError(t, err)
	return l
}

func TestArrayLogCreatesDirectoriesAndFile(t *testing.T) {
	l := openLog(t, audit.FormatArray)

	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{"version":"1"}`), "line")))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "line", records[0]["status_line_output"])
	assert.Equal(t, map[string]any{"version": "1"}, records[0]["input_data"])
	assert.NotEmpty(t, records[0]["timestamp"])
	assert.NotEmpty(t, records[0]["id"])

	// Pretty-printed with 2-space indentation.
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \""), "unexpected layout:\n%s", data)
}

// Feature: statusline, audit log grows by exactly one entry per append.
func TestArrayLogGrowsByOne(t *testing.T) {
	l := openLog(t, audit.FormatArray)
	rapid.Check(t, func(t *rapid.T) {
		before, err := l.Records()
		if err != nil {
			t.Fatalf("Records: %v", err)
		}
		out := rapid.StringN(0, 40, -1).Draw(t, "output")
		if err := l.Append(audit.NewEntry(json.RawMessage(`{}`), out)); err != nil {
			t.Fatalf("Append: %v", err)
		}
		after, err := l.Records()
		if err != nil {
			t.Fatalf("Records: %v", err)
		}
		if len(after) != len(before)+1 {
			t.Fatalf("log grew from %d to %d", len(before), len(after))
		}
		var last audit.Entry
		if err := json.Unmarshal(after[len(after)-1], &last); err != nil {
			t.Fatalf("decode last: %v", err)
		}
		if last.StatusLineOutput != out {
			t.Fatalf("last output = %q, want %q", last.StatusLineOutput, out)
		}
	})
}

func TestArrayLogResetsCorruptContent(t *testing.T) {
	for _, content := range []string{"{not json", `{"an": "object"}`, "null", ""} {
		l := openLog(t, audit.FormatArray)
		require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o755))
		require.NoError(t, os.WriteFile(l.Path(), []byte(content), 0o644))

		require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "fresh")))

		records, err := l.Records()
		require.NoError(t, err)
		assert.Len(t, records, 1, "content %q", content)
	}
}

func TestArrayLogPreservesForeignRecords(t *testing.T) {
	l := openLog(t, audit.FormatArray)
	require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o755))
	legacy := `[{"timestamp": "2025-01-01T10:00:00.123456", "input_data": {"a": 1}, "status_line_output": "old", "extra": true}, 42]`
	require.NoError(t, os.WriteFile(l.Path(), []byte(legacy), 0o644))

	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "new")))

	records, err := l.Records()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.JSONEq(t, `{"timestamp": "2025-01-01T10:00:00.123456", "input_data": {"a": 1}, "status_line_output": "old", "extra": true}`, string(records[0]))
	assert.JSONEq(t, `42`, string(records[1]))

	// Entries skips records that do not decode as entries.
	entries, err := audit.Entries(l)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].StatusLineOutput)
}

func TestEntriesSkipsObjectsWithoutTimestamp(t *testing.T) {
	l := openLog(t, audit.FormatJSONL)
	require.NoError(t, os.MkdirAll(filepath.Dir(l.Path()), 0o755))
	require.NoError(t, os.WriteFile(l.Path(), []byte(`{"note": "hand written"}`+"\n"), 0o644))
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "real")))

	entries, err := audit.Entries(l)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "real", entries[0].StatusLineOutput)
}

func TestDecodeEntry(t *testing.T) {
	_, ok := audit.DecodeEntry(json.RawMessage(`{"status_line_output": "x"}`))
	assert.False(t, ok)
	_, ok = audit.DecodeEntry(json.RawMessage(`"text"`))
	assert.False(t, ok)

	e, ok := audit.DecodeEntry(json.RawMessage(`{"timestamp": "2026-01-02T03:04:05Z", "status_line_output": "x"}`))
	require.True(t, ok)
	assert.Equal(t, "x", e.StatusLineOutput)
}

func TestArrayLogClear(t *testing.T) {
	l := openLog(t, audit.FormatArray)
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "x")))
	require.NoError(t, l.Clear())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestArrayLogLeavesNoTempFiles(t *testing.T) {
	l := openLog(t, audit.FormatArray)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "x")))
	}
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(l.Path()), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestArrayLogFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	l := openLog(t, audit.FormatArray)
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "x")))
	info, err := os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, os.Chmod(l.Path(), 0o640))
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "y")))
	info, err = os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestJSONLLogAppendsLines(t *testing.T) {
	l := openLog(t, audit.FormatJSONL)
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{"a":1}`), "one")))
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{"a":2}`), "two")))

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	entries, err := audit.Entries(l)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].StatusLineOutput)
	assert.Equal(t, "two", entries[1].StatusLineOutput)
	assert.JSONEq(t, `{"a":2}`, string(entries[1].InputData))
}

func TestJSONLLogSkipsGarbageLines(t *testing.T) {
	l := openLog(t, audit.FormatJSONL)
	require.NoError(t, l.Append(audit.NewEntry(json.RawMessage(`{}`), "ok")))
	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{truncated\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := l.Records()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, l.Clear())
	records, err = l.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMissingLogIsEmpty(t *testing.T) {
	for _, f := range []audit.Format{audit.FormatArray, audit.FormatJSONL} {
		l := openLog(t, f)
		records, err := l.Records()
		require.NoError(t, err)
		assert.Empty(t, records)
	}
}

func TestOpenRejectsUnknownFormat(t *testing.T) {
	_, err := audit.Open("x.json", "xml")
	assert.Error(t, err)
}

func TestOpenDefaultPath(t *testing.T) {
	l, err := audit.Open("", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".claude", "data", "logs", "status_line.json"), l.Path())
}

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/statusline/internal/install"
)

func TestInstallCommand(t *testing.T) {
	dir := isolate(t)
	settings := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{"theme": "dark"}`), 0o644))

	out, _, err := executeCommand(rootCmd, "", "install",
		"--settings", settings, "--command", "statusline render", "--padding", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Status line installed")

	sl, err := install.Current(settings)
	require.NoError(t, err)
	require.NotNil(t, sl)
	assert.Equal(t, install.StatusLine{Type: "command", Command: "statusline render", Padding: 1}, *sl)

	data, err := os.ReadFile(settings)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"theme": "dark"`)
}

func TestInstallCommandDefaultsToHomeSettings(t *testing.T) {
	isolate(t)

	_, _, err := executeCommand(rootCmd, "", "install", "--command", "sl render")
	require.NoError(t, err)

	sl, err := install.Current(filepath.Join(os.Getenv("HOME"), ".claude", "settings.json"))
	require.NoError(t, err)
	require.NotNil(t, sl)
	assert.Equal(t, "sl render", sl.Command)
}

func TestInstallCommandRemove(t *testing.T) {
	dir := isolate(t)
	settings := filepath.Join(dir, "settings.json")
	require.NoError(t, install.Install(settings, "statusline render", 0))

	out, _, err := executeCommand(rootCmd, "", "install", "--settings", settings, "--remove")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	out, _, err = executeCommand(rootCmd, "", "install", "--settings", settings, "--remove")
	require.NoError(t, err)
	assert.Contains(t, out, "No status line configured")
}

func TestInstallCommandMalformedSettings(t *testing.T) {
	dir := isolate(t)
	settings := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settings, []byte(`not json`), 0o644))

	_, _, err := executeCommand(rootCmd, "", "install", "--settings", settings, "--command", "x")
	assert.Error(t, err)
}

func TestInstallCommandReportsReplacedCommand(t *testing.T) {
	dir := isolate(t)
	settings := filepath.Join(dir, "settings.json")
	require.NoError(t, install.Install(settings, "old-statusline.sh", 0))

	out, _, err := executeCommand(rootCmd, "", "install", "--settings", settings, "--command", "statusline render")
	require.NoError(t, err)
	assert.Contains(t, out, "replaced: old-statusline.sh")
	assert.Contains(t, out, "command: statusline render")

	out, _, err = executeCommand(rootCmd, "", "install", "--settings", settings, "--command", "statusline render")
	require.NoError(t, err)
	assert.NotContains(t, out, "replaced:")
}

func TestInstallCommandReplacesMalformedStatusLine(t *testing.T) {
	dir := isolate(t)
	settings := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{"statusLine": "not an object"}`), 0o644))

	out, _, err := executeCommand(rootCmd, "", "install", "--settings", settings, "--command", "x")
	require.NoError(t, err)
	assert.NotContains(t, out, "replaced:")

	sl, err := install.Current(settings)
	require.NoError(t, err)
	require.NotNil(t, sl)
	assert.Equal(t, "x", sl.Command)
}

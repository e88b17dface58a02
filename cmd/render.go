package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/statusline/internal/audit"
	"github.com/fakeyudi/statusline/internal/collector"
	"github.com/fakeyudi/statusline/internal/logger"
	"github.com/fakeyudi/statusline/internal/session"
	"github.com/fakeyudi/statusline/internal/statusline"
)

// gitRunner overrides the git subprocess; nil runs the real git binary.
var gitRunner collector.GitRunner

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Read a session snapshot on stdin and print the status line",
	Long: `Reads one JSON session snapshot on stdin and prints the status line.

This command always exits 0. Invalid JSON prints a fixed "Unknown" line and
any other failure prints a fixed "Error" line.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	r := statusline.New(statusline.NewRenderer(cmd.OutOrStdout(), !noColor))
	r.FallbackModel = cfg.FallbackModel

	line := buildStatusLine(cmd.Context(), cmd.InOrStdin(), r)
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// buildStatusLine runs read → collect → render → log. It never fails: bad
// input and panics turn into one of the renderer's fallback lines, and
// fallback lines are not logged.
func buildStatusLine(ctx context.Context, in io.Reader, r *statusline.Renderer) (line string) {
	defer func() {
		if p := recover(); p != nil {
			logger.Debugf("rendering status line: %v", p)
			line = r.Fallback(statusline.FallbackError)
		}
	}()

	data, err := readInput(in)
	if err != nil {
		logger.Debugf("reading stdin: %v", err)
		return r.Fallback(statusline.FallbackError)
	}

	snap, err := session.Parse(data)
	if err != nil {
		logger.Debugf("parsing snapshot: %v", err)
		if errors.Is(err, session.ErrMalformed) {
			return r.Fallback(statusline.FallbackUnknown)
		}
		return r.Fallback(statusline.FallbackError)
	}

	facts := collector.CollectAll(ctx, snap,
		collector.ContextCollector{},
		&collector.GitCollector{Timeout: cfg.GitTimeout, Runner: gitRunner},
		&collector.SandboxCollector{SettingsPath: cfg.SettingsPath},
	)
	for _, w := range facts.Warnings {
		logger.Warn(w)
	}

	line = r.Render(snap, facts)
	recordLine(snap, line)
	return line
}

// readInput reads all of in. An interactive terminal yields no data rather
// than blocking for input that will never come.
func readInput(in io.Reader) ([]byte, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		return nil, nil
	}
	return io.ReadAll(in)
}

// recordLine appends the rendered line to the audit log. Failures are
// swallowed so the status line is still printed.
func recordLine(snap *session.Snapshot, line string) {
	if cfg.DisableLog {
		return
	}
	l, err := audit.Open(cfg.LogPath, cfg.LogFormat)
	if err != nil {
		logger.Debugf("opening status line log: %v", err)
		return
	}
	if err := l.Append(audit.NewEntry(snap.Raw, line)); err != nil {
		logger.Debugf("writing status line log: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

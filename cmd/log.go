package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/statusline/internal/audit"
	"github.com/fakeyudi/statusline/internal/logger"
	"github.com/fakeyudi/statusline/internal/tui"
)

var (
	logTail   int
	logPlain  bool
	logFollow bool
	logFields bool
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"logs"},
	Short:   "Inspect the status line audit log",
	Long: `Shows the status lines recorded in the audit log together with the
snapshots that produced them.

On a terminal this opens an interactive browser; use --plain for a listing,
--fields to list every input field of the newest entry, or -f to follow new
entries as they are written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := audit.Open(cfg.LogPath, cfg.LogFormat)
		if err != nil {
			return err
		}
		entries, err := audit.Entries(l)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case logFields:
			return printFields(out, entries)
		case logFollow:
			printEntries(out, tail(entries, logTail))
			return followLog(cmd.Context(), out, l, len(entries), nil)
		case logPlain || !isTerminal(out):
			if len(entries) == 0 {
				fmt.Fprintf(out, "no status lines logged in %s\n", l.Path())
				return nil
			}
			printEntries(out, tail(entries, logTail))
			return nil
		}
		return tui.Run(entries, l.Path())
	},
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the audit log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := audit.Open(cfg.LogPath, cfg.LogFormat)
		if err != nil {
			return err
		}
		if err := l.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Log cleared: %s\n", l.Path())
		return nil
	},
}

// printEntries writes one "<time>  <status line>" row per entry.
func printEntries(w io.Writer, entries []audit.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s\n", e.Timestamp.Local().Format(time.RFC3339), e.StatusLineOutput)
	}
}

// printFields lists the flattened input fields of the newest entry.
func printFields(w io.Writer, entries []audit.Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no status lines logged yet")
	}
	for _, f := range audit.Fields(entries[len(entries)-1].InputData) {
		fmt.Fprintf(w, "%s = %s\n", f.Path, f.Value)
	}
	return nil
}

// tail returns the last n entries, or all of them when n <= 0.
func tail(entries []audit.Entry, n int) []audit.Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// followLog prints entries appended after the first seen records until ctx
// is done. The directory is watched rather than the file because the array
// format replaces the file on every write. ready, if non-nil, is called once
// the watch is in place.
func followLog(ctx context.Context, w io.Writer, l audit.Log, seen int, ready func()) error {
	dir := filepath.Dir(l.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching log: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	if ready != nil {
		ready()
	}

	name := filepath.Clean(l.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Debugf("log watcher: %v", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			records, err := l.Records()
			if err != nil {
				logger.Debugf("reading log: %v", err)
				continue
			}
			if len(records) < seen {
				// cleared or reset
				seen = 0
			}
			for _, r := range records[seen:] {
				if e, ok := audit.DecodeEntry(r); ok {
					printEntries(w, []audit.Entry{e})
				}
			}
			seen = len(records)
		}
	}
}

func init() {
	logCmd.Flags().IntVarP(&logTail, "tail", "n", 20, "Number of most recent entries to list (0 for all)")
	logCmd.Flags().BoolVar(&logPlain, "plain", false, "Plain text listing instead of the interactive browser")
	logCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "Keep printing entries as they are logged")
	logCmd.Flags().BoolVar(&logFields, "fields", false, "List every input field of the newest entry")
	logCmd.AddCommand(logClearCmd)
	rootCmd.AddCommand(logCmd)
}

package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fakeyudi/statusline/internal/logger"
	"github.com/fakeyudi/statusline/internal/session"
)

// DefaultGitTimeout bounds each git query.
const DefaultGitTimeout = 2 * time.Second

// GitRunner executes a git command and returns its stdout.
// This abstraction allows mocking in tests.
type GitRunner func(ctx context.Context, workDir string, args ...string) (string, error)

// GitState is the version-control state of the working directory.
type GitState struct {
	Branch  string
	Changes int // changed or untracked paths; 0 when clean
}

// StatusSuffix returns "±N" when there are changes, or "".
func (g GitState) StatusSuffix() string {
	if g.Changes == 0 {
		return ""
	}
	return "±" + strconv.Itoa(g.Changes)
}

// GitCollector queries git for the current branch and change count.
type GitCollector struct {
	WorkDir string        // empty means the process working directory
	Timeout time.Duration // per query; DefaultGitTimeout if zero
	Runner  GitRunner     // if nil, uses the real git subprocess
}

// gitWaitDelay bounds how long a killed git may keep its output pipes open
// through child processes (submodule or fsmonitor helpers).
const gitWaitDelay = 100 * time.Millisecond

// defaultGitRunner runs git as a real subprocess. A non-zero exit is an error.
func defaultGitRunner(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = workDir
	cmd.WaitDelay = gitWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s timed out", strings.Join(args, " "))
		}
		return "", fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Collect implements Collector. Git is nil when no branch could be determined;
// the status query only runs once a branch is known. Errors are never returned.
func (g *GitCollector) Collect(ctx context.Context, _ *session.Snapshot) (CollectorResult, error) {
	branch, ok := g.Branch(ctx)
	if !ok {
		return CollectorResult{}, nil
	}
	changes, _ := g.Changes(ctx)
	return CollectorResult{Git: &GitState{Branch: branch, Changes: changes}}, nil
}

// Branch returns the short name of the checked-out branch.
func (g *GitCollector) Branch(ctx context.Context) (string, bool) {
	out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		logger.Debugf("git branch query: %v", err)
		return "", false
	}
	branch := strings.TrimSpace(out)
	return branch, branch != ""
}

// Changes counts the lines of the porcelain status listing.
func (g *GitCollector) Changes(ctx context.Context) (int, bool) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		logger.Debugf("git status query: %v", err)
		return 0, false
	}
	return countLines(out), true
}

func (g *GitCollector) run(ctx context.Context, args ...string) (string, error) {
	runner := g.Runner
	if runner == nil {
		runner = defaultGitRunner
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultGitTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return runner(ctx, g.WorkDir, args...)
}

// countLines returns the number of lines in trimmed output, 0 if empty.
func countLines(output string) int {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "\n") + 1
}

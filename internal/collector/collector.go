package collector

import (
	"context"

	"github.com/fakeyudi/statusline/internal/session"
)

// Collector gathers one fact for the status line.
type Collector interface {
	// Collect extracts its fact and returns its contribution to the status line.
	// Failures degrade to an absent fact; Warnings carry issues worth surfacing.
	Collect(ctx context.Context, snap *session.Snapshot) (CollectorResult, error)
}

// CollectorResult holds the output of a single collector.
type CollectorResult struct {
	Usage    *ContextUsage // populated by ContextCollector
	Git      *GitState     // populated by GitCollector
	Sandbox  SandboxState  // populated by SandboxCollector
	Warnings []string      // non-fatal issues encountered
}

// Facts is the merged result of every collector for one invocation.
type Facts struct {
	Usage    *ContextUsage
	Git      *GitState
	Sandbox  SandboxState
	Warnings []string
}

// Merge folds r into f. Later results never clear facts set by earlier ones.
func (f *Facts) Merge(r CollectorResult) {
	if r.Usage != nil {
		f.Usage = r.Usage
	}
	if r.Git != nil {
		f.Git = r.Git
	}
	if r.Sandbox != SandboxUnknown {
		f.Sandbox = r.Sandbox
	}
	f.Warnings = append(f.Warnings, r.Warnings...)
}

// CollectAll runs each collector in order and merges the results.
// A collector returning an error contributes nothing and is reported as a warning.
func CollectAll(ctx context.Context, snap *session.Snapshot, collectors ...Collector) Facts {
	var facts Facts
	for _, c := range collectors {
		result, err := c.Collect(ctx, snap)
		if err != nil {
			facts.Warnings = append(facts.Warnings, err.Error())
			continue
		}
		facts.Merge(result)
	}
	return facts
}

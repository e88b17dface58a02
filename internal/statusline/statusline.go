// Package statusline composes collected facts into the single rendered line.
package statusline

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/statusline/internal/collector"
	"github.com/fakeyudi/statusline/internal/session"
)

// Separator joins segments.
const Separator = " | "

// FallbackKind selects one of the fixed lines printed when rendering cannot proceed.
type FallbackKind int

const (
	// FallbackUnknown is printed when the input is not valid JSON.
	FallbackUnknown FallbackKind = iota
	// FallbackError is printed for any other failure.
	FallbackError
)

// Renderer turns a snapshot and its facts into a status line.
type Renderer struct {
	Styles        Styles
	FallbackModel string // model label when the snapshot has none
}

// New returns a Renderer using styles built on r.
func New(r *lipgloss.Renderer) *Renderer {
	return &Renderer{
		Styles:        NewStyles(r),
		FallbackModel: session.DefaultModelName,
	}
}

// Render returns the status line for snap and facts.
func (r *Renderer) Render(snap *session.Snapshot, facts collector.Facts) string {
	return strings.Join(r.Segments(snap, facts), Separator)
}

// Segments returns the styled segments in display order, omitting absent facts.
func (r *Renderer) Segments(snap *session.Snapshot, facts collector.Facts) []string {
	fallback := r.FallbackModel
	if fallback == "" {
		fallback = session.DefaultModelName
	}
	parts := []string{r.Styles.Model.Render("[" + snap.ModelName(fallback) + "]")}

	if u := facts.Usage; u != nil {
		text := collector.FormatTokens(u.Used) + "/" + collector.FormatTokens(u.Total) +
			" (" + strconv.FormatInt(u.Percent, 10) + "%)"
		parts = append(parts, r.usageStyle(u.Tier()).Render(text))
	}

	if dir := snap.CurrentDir(); dir != "" {
		parts = append(parts, r.Styles.Dir.Render("📁 "+filepath.Base(dir)))
	}

	if g := facts.Git; g != nil {
		text := "🌿 " + g.Branch
		if suffix := g.StatusSuffix(); suffix != "" {
			text += " " + suffix
		}
		parts = append(parts, r.Styles.Git.Render(text))
	}

	if snap.Version != "" {
		parts = append(parts, r.Styles.Version.Render("v"+snap.Version))
	}

	switch facts.Sandbox {
	case collector.SandboxEnabled:
		parts = append(parts, r.Styles.SandboxOn.Render("Sandbox (✓)"))
	case collector.SandboxDisabled:
		parts = append(parts, r.Styles.SandboxOff.Render("Sandbox (✗)"))
	}

	return parts
}

// Fallback returns the fixed line for kind.
func (r *Renderer) Fallback(kind FallbackKind) string {
	label := "Error"
	if kind == FallbackUnknown {
		label = "Unknown"
	}
	return r.Styles.Fallback.Render("[" + session.DefaultModelName + "] 📁 " + label)
}

func (r *Renderer) usageStyle(t collector.Tier) lipgloss.Style {
	switch t {
	case collector.TierLow:
		return r.Styles.UsageLow
	case collector.TierMedium:
		return r.Styles.UsageMedium
	default:
		return r.Styles.UsageHigh
	}
}

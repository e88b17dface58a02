package statusline

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds one lipgloss style per segment kind.
type Styles struct {
	Model       lipgloss.Style
	UsageLow    lipgloss.Style
	UsageMedium lipgloss.Style
	UsageHigh   lipgloss.Style
	Dir         lipgloss.Style
	Git         lipgloss.Style
	Version     lipgloss.Style
	SandboxOn   lipgloss.Style
	SandboxOff  lipgloss.Style
	Fallback    lipgloss.Style
}

// NewRenderer returns a lipgloss renderer for w. The host reads the status
// line through a pipe, so the profile is pinned instead of detected: 16-color
// ANSI when color is true, plain text otherwise.
func NewRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// NewStyles builds the segment styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Styles{
		Model:       fg("6"), // cyan
		UsageLow:    fg("2"), // green
		UsageMedium: fg("3"), // yellow
		UsageHigh:   fg("1"), // red
		Dir:         fg("4"), // blue
		Git:         fg("2"),
		Version:     fg("8"), // bright black
		SandboxOn:   fg("2"),
		SandboxOff:  fg("1"),
		Fallback:    fg("1"),
	}
}

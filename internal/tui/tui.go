// Package tui provides a Bubble Tea TUI for browsing the status line log.
package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/statusline/internal/audit"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabEntries tabID = iota
	tabInput
	tabFields
	tabCount
)

var tabNames = [tabCount]string{"Entries", "Input", "Fields"}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the log browser.
type Model struct {
	entries   []audit.Entry // newest first
	filename  string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	cursor    int
}

// New creates a model for entries (oldest first, as stored) read from filename.
func New(entries []audit.Entry, filename string) Model {
	newest := make([]audit.Entry, len(entries))
	for i, e := range entries {
		newest[len(entries)-1-i] = e
	}
	return Model{
		entries:  newest,
		filename: filepath.Base(filename),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1", "2", "3":
			m.activeTab = tabID(msg.String()[0] - '1')
			return m, nil
		case "up", "k":
			if m.activeTab == tabEntries {
				if m.cursor > 0 {
					m.cursor--
					m.refresh()
				}
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabEntries {
				if m.cursor < len(m.entries)-1 {
					m.cursor++
					m.refresh()
				}
				return m, nil
			}
		case "enter":
			if m.activeTab == tabEntries && len(m.entries) > 0 {
				m.activeTab = tabInput
				return m, nil
			}
		}
		if !m.ready {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render(fmt.Sprintf("  statusline log  %s  (%d entries)", m.filename, len(m.entries)))

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-3 jump  q quit"
	if m.activeTab == tabEntries {
		hint = "  ←/→ tab  ↑/↓ select  enter input  q quit"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint + strings.Repeat(" ", pad) + pct)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ──────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

// refresh re-renders every tab after the selection moved.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	for i := tabID(0); i < tabCount; i++ {
		m.viewports[i].SetContent(m.renderTab(i))
		if i != tabEntries {
			m.viewports[i].GotoTop()
		}
	}
}

// ── Tab renderers ───────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabEntries:
		return m.renderEntries()
	case tabInput:
		return m.renderInput()
	case tabFields:
		return m.renderFields()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func (m *Model) selected() (audit.Entry, bool) {
	if len(m.entries) == 0 {
		return audit.Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) renderEntries() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Entries (%d, newest first)", len(m.entries))))
	if len(m.entries) == 0 {
		sb.WriteString(dimStyle.Render("  (no status lines logged yet)") + "\n")
		return sb.String()
	}
	for i, e := range m.entries {
		marker := "   "
		if i == m.cursor {
			marker = cursorStyle.Render(" ▶ ")
		}
		ts := timeStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		sb.WriteString(marker + ts + "  " + e.StatusLineOutput + "\n")
	}
	return sb.String()
}

func (m *Model) renderInput() string {
	var sb strings.Builder
	sb.WriteString(heading("Input"))
	e, ok := m.selected()
	if !ok {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-10s", label)) + "  " + value + "\n")
	}
	row("ID:", e.ID)
	row("Time:", e.Timestamp.Local().Format("2006-01-02 15:04:05.000 MST"))
	row("Output:", e.StatusLineOutput)
	sb.WriteString("\n")

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, e.InputData, "  ", "  "); err != nil {
		sb.WriteString(dimStyle.Render("  (input is not valid JSON)") + "\n")
		return sb.String()
	}
	sb.WriteString("  " + pretty.String() + "\n")
	return sb.String()
}

func (m *Model) renderFields() string {
	var sb strings.Builder
	e, ok := m.selected()
	if !ok {
		sb.WriteString(heading("Fields"))
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	fields := audit.Fields(e.InputData)
	sb.WriteString(heading(fmt.Sprintf("Fields (%d)", len(fields))))
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Path))
	}
	for _, f := range fields {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-*s", width, f.Path)) + "  " + f.Value + "\n")
	}
	return sb.String()
}

// Run starts the TUI for the given log entries.
func Run(entries []audit.Entry, filename string) error {
	p := tea.NewProgram(New(entries, filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

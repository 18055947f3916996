// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"tsgraph/internal/logging"
)

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return m.styles.InfoStyle().Render("loading…")
	}

	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)

	parts := []string{m.renderHeader(layout)}
	parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(layout),
		m.renderDetailPanel(layout),
	))

	if m.logPanelOpen {
		separator := lipgloss.NewStyle().
			Width(layout.Separator.Width).
			Foreground(m.styles.BorderColor()).
			Render(strings.Repeat("─", layout.Separator.Width))
		parts = append(parts, separator, m.renderLogPanel(layout))
	}

	statusBar := lipgloss.NewStyle().Width(layout.StatusBar.Width).Render(m.renderStatusBar(layout.StatusBar.Width))
	parts = append(parts, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(layout Layout) string {
	title := m.styles.TitleStyle().Render("tsgraph")
	if m.snapshot != nil && m.snapshot.SolutionSetup {
		title += " " + m.styles.AccentStyle().Render("[solution setup]")
	}

	subtitle := m.workspace
	if m.listenURL != "" {
		subtitle += "  •  " + m.listenURL
	}
	subtitle = ansi.Truncate(subtitle, max(layout.Header.Width, 1), "…")

	return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.SubtitleStyle().Render(subtitle))
}

func (m Model) renderList(layout Layout) string {
	headerStyle := m.styles.PanelHeaderUnfocusedStyle()
	if m.focus == FocusList {
		headerStyle = m.styles.PanelHeaderFocusedStyle()
	}
	label := " Projects"
	if m.snapshot != nil {
		label = fmt.Sprintf(" Projects (%d)", len(m.snapshot.Result.Projects))
	}
	header := headerStyle.Width(layout.List.Width).Render(label)

	var body string
	if len(m.projects.Items()) == 0 {
		msg := "No projects inferred yet."
		if m.snapshot != nil {
			msg = "No projects found."
		}
		body = lipgloss.NewStyle().
			Width(layout.List.Width).
			Height(layout.ListHeight()).
			Padding(1).
			Render(m.styles.InfoStyle().Render(msg))
	} else {
		body = lipgloss.NewStyle().
			Width(layout.List.Width).
			Height(layout.ListHeight()).
			MaxHeight(layout.ListHeight()).
			Render(m.projects.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderDetailPanel(layout Layout) string {
	header := m.styles.PanelHeaderUnfocusedStyle().Width(layout.Detail.Width).Render(" Targets")

	bodyHeight := max(layout.Detail.Height-1, 1)
	panel := lipgloss.NewStyle().
		Width(layout.Detail.Width-1).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		PaddingLeft(1).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(m.styles.BorderColor())

	return lipgloss.JoinVertical(lipgloss.Left, header, panel.Render(m.detail.View()))
}

// detailContent renders the selected project, or a hint when none is selected.
func (m Model) detailContent(width int) string {
	item, ok := m.selectedProject()
	if !ok {
		return m.styles.HelpStyle().Render("Select a project to see its targets.")
	}
	return RenderProject(m.styles, item.node, width)
}

func (m Model) renderLogPanel(layout Layout) string {
	headerStyle := m.styles.PanelHeaderUnfocusedStyle()
	if m.focus == FocusLogs {
		headerStyle = m.styles.PanelHeaderFocusedStyle()
	}
	label := fmt.Sprintf(" Logs (%d)", len(m.logEntries))
	if m.problemsOnly {
		label += " [warnings+errors]"
	}
	if m.scopeFilter != "" {
		label += " [scope: " + m.scopeFilter + "]"
	}
	header := headerStyle.Width(layout.Logs.Width).Render(label)

	content := m.logViewport.View()
	if len(m.visibleLogEntries()) == 0 {
		content = m.styles.InfoStyle().Render("No log entries")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Timestamp.Format("15:04:05"))
	level := m.styles.LogLevelStyle(entry.Level).Render(entry.Level)
	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")
	line := fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
	if fields := entry.FormatFields(); fields != "" {
		line += " " + m.styles.HelpStyle().Render(fields)
	}
	if m.logViewport.Width > 0 {
		line = ansi.Truncate(line, m.logViewport.Width, "…")
	}
	return line
}

func (m Model) renderStatusBar(width int) string {
	var statusText string
	switch m.statusLevel {
	case StatusLoading:
		statusText = m.spinner.View() + " " + m.styles.InfoStyle().Render(m.statusMessage)
	case StatusSuccess:
		statusText = m.styles.SuccessStyle().Render("✓ " + m.statusMessage)
	case StatusError:
		statusText = m.styles.ErrorStyle().Render("✗ " + m.statusMessage)
		if m.err != nil {
			statusText += m.styles.ErrorStyle().Render(": " + m.err.Error())
		}
		statusText += m.styles.HelpStyle().Render(" (esc to clear)")
	default:
		statusText = m.styles.InfoStyle().Render(m.statusMessage)
	}

	help := m.renderContextualHelp()

	spacerWidth := width - lipgloss.Width(statusText) - lipgloss.Width(help) - 2
	if spacerWidth < 1 {
		statusText = ansi.Truncate(statusText, max(width-lipgloss.Width(help)-3, 1), "…")
		spacerWidth = 1
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom, statusText, strings.Repeat(" ", spacerWidth), help)
}

// renderContextualHelp returns help text based on current panel focus.
func (m Model) renderContextualHelp() string {
	var help string
	switch {
	case m.focus == FocusLogs:
		help = "↑/↓: scroll • g/G: top/bottom • e: problems • s: scope • tab/esc: projects"
	case m.logPanelOpen:
		help = "↑/↓: navigate • /: filter • r: refresh • tab: logs • l: hide logs • q: quit"
	default:
		help = "↑/↓: navigate • /: filter • r: refresh • l: logs • q: quit"
	}
	return m.styles.HelpStyle().Render(help)
}

// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tsgraph/internal/events"
	"tsgraph/internal/logging"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case events.GraphUpdatedMsg:
		snap := msg.Snapshot
		m.snapshot = &snap
		m.err = nil
		cmd := m.projects.SetItems(toListItems(snap.Result))
		m.refreshDetail()
		m.setStatus(StatusSuccess, fmt.Sprintf("%d projects from %d tsconfig files in %s",
			len(snap.Result.Projects), len(snap.ConfigFiles), snap.Duration.Round(time.Millisecond)))
		return m, cmd

	case events.InferenceFailedMsg:
		m.err = msg.Err
		m.setStatus(StatusError, "inference failed")
		return m, nil

	case events.FilesChangedMsg:
		m.setStatus(StatusLoading, fmt.Sprintf("%d files changed, re-inferring…", len(msg.Paths)))
		return m, nil

	case events.WebListenURLMsg:
		m.listenURL = msg.URL
		return m, nil

	case logEntriesMsg:
		for _, entry := range msg.entries {
			m.addLogEntry(entry)
		}
		if m.logPanelOpen && m.ready {
			m.refreshLogs()
		}
		return m, m.consumeLogEntries()

	case clearStatusMsg:
		if m.statusLevel == StatusInfo && m.statusMessage == "ctrl+c ctrl+c to quit" {
			m.setStatus(StatusInfo, "")
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter prompt is active every key belongs to the list.
	if m.projects.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		now := time.Now()
		if !m.lastCtrlC.IsZero() && now.Sub(m.lastCtrlC) < doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlC = now
		m.setStatus(StatusInfo, "ctrl+c ctrl+c to quit")
		return m, tea.Tick(2*time.Second, func(time.Time) tea.Msg { return clearStatusMsg{} })

	case "q":
		return m, tea.Quit

	case "r":
		if m.infer == nil {
			return m, nil
		}
		m.setStatus(StatusLoading, "inferring projects…")
		return m, m.runInference()

	case "l":
		m.logPanelOpen = !m.logPanelOpen
		if !m.logPanelOpen {
			m.focus = FocusList
		}
		m.resize()
		return m, nil

	case "tab":
		if m.logPanelOpen && m.focus == FocusList {
			m.focus = FocusLogs
		} else {
			m.focus = FocusList
		}
		return m, nil

	case "esc":
		if m.err != nil {
			m.err = nil
			m.setStatus(StatusInfo, "")
			return m, nil
		}
		if m.focus == FocusLogs {
			m.focus = FocusList
			return m, nil
		}
	}

	if m.focus == FocusLogs {
		switch msg.String() {
		case "g":
			m.logViewport.GotoTop()
			return m, nil
		case "G":
			m.logViewport.GotoBottom()
			return m, nil
		case "e":
			m.problemsOnly = !m.problemsOnly
			m.refreshLogs()
			return m, nil
		case "s":
			m.scopeFilter = m.nextScope()
			m.refreshLogs()
			return m, nil
		}
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}

	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.projects.Index()
	var cmd tea.Cmd
	m.projects, cmd = m.projects.Update(msg)
	if m.projects.Index() != before || m.projects.FilterState() != list.Unfiltered {
		m.refreshDetail()
	}
	return m, cmd
}

// resize recomputes every component's size from the terminal dimensions.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen)
	m.projects.SetSize(layout.List.Width, layout.ListHeight())

	dw, dh := layout.DetailSize()
	lh := max(layout.Logs.Height-1, 1)
	if !m.ready {
		m.detail = viewport.New(dw, dh)
		m.logViewport = viewport.New(layout.Logs.Width, lh)
		m.ready = true
	} else {
		m.detail.Width, m.detail.Height = dw, dh
		m.logViewport.Width, m.logViewport.Height = layout.Logs.Width, lh
	}
	m.refreshDetail()
	m.refreshLogs()
}

func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	m.detail.SetContent(m.detailContent(m.detail.Width))
	m.detail.GotoTop()
}

func (m *Model) refreshLogs() {
	if !m.ready {
		return
	}
	entries := m.visibleLogEntries()
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = m.renderLogEntry(entry)
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) addLogEntry(entry logging.LogEntry) {
	m.logEntries = append(m.logEntries, entry)
	if len(m.logEntries) > maxLogEntries {
		m.logEntries = m.logEntries[len(m.logEntries)-maxLogEntries:]
	}
}

func (m *Model) setStatus(level StatusLevel, message string) {
	m.statusLevel = level
	m.statusMessage = message
}

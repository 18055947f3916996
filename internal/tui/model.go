// Package tui is the interactive project browser: the inferred projects on
// the left, the selected project's targets on the right, logs below.
package tui

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tsgraph/internal/events"
	"tsgraph/internal/inference"
	"tsgraph/internal/logging"
)

// inferTimeout bounds a single inference run started from the TUI.
const inferTimeout = 30 * time.Second

// maxLogEntries caps the log panel's history.
const maxLogEntries = 500

// InferFunc runs one inference pass.
type InferFunc func(ctx context.Context) (inference.Snapshot, error)

// PanelFocus identifies the panel receiving navigation keys.
type PanelFocus int

const (
	FocusList PanelFocus = iota
	FocusLogs
)

// StatusLevel selects the status bar's icon and color.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusLoading
	StatusSuccess
	StatusError
)

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles

	workspace string
	infer     InferFunc
	logs      <-chan logging.LogEntry
	logger    *logging.ScopedLogger

	projects    list.Model
	detail      viewport.Model
	logViewport viewport.Model
	spinner     spinner.Model
	ready       bool

	snapshot     *inference.Snapshot
	logEntries   []logging.LogEntry
	logPanelOpen bool
	focus        PanelFocus
	problemsOnly bool   // log panel shows only warnings and errors
	scopeFilter  string // log panel scope prefix; empty shows all

	statusLevel   StatusLevel
	statusMessage string
	listenURL     string
	err           error
	lastCtrlC     time.Time
}

// NewModel creates the TUI model. infer may be nil when another component
// (the watcher) drives inference and delivers events.GraphUpdatedMsg through
// Program.Send. logs may be nil to disable the log panel feed.
func NewModel(theme, workspace string, infer InferFunc, logs <-chan logging.LogEntry, logger *logging.ScopedLogger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	styles := NewStyles(theme)

	projects := list.New([]list.Item{}, newProjectDelegate(styles), 0, 0)
	projects.SetShowTitle(false)
	projects.SetShowStatusBar(false)
	projects.SetFilteringEnabled(true)
	projects.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.AccentStyle()

	logger.Debug("tui initialized", "workspace", workspace)

	return Model{
		styles:        styles,
		workspace:     workspace,
		infer:         infer,
		logs:          logs,
		logger:        logger,
		projects:      projects,
		spinner:       s,
		statusLevel:   StatusLoading,
		statusMessage: "inferring projects…",
	}
}

// Init returns the initial commands: first inference, spinner, log feed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.runInference(),
		m.spinner.Tick,
		m.consumeLogEntries(),
	)
}

// runInference returns a command that runs one inference pass.
func (m Model) runInference() tea.Cmd {
	if m.infer == nil {
		return nil
	}
	infer := m.infer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), inferTimeout)
		defer cancel()

		snap, err := infer(ctx)
		if err != nil {
			return events.InferenceFailedMsg{Err: err}
		}
		return events.GraphUpdatedMsg{Snapshot: snap}
	}
}

// consumeLogEntries waits for the next log entry, then drains whatever else
// is buffered so bursts arrive as one message.
func (m Model) consumeLogEntries() tea.Cmd {
	if m.logs == nil {
		return nil
	}
	ch := m.logs
	return func() tea.Msg {
		first, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{first}
		for len(entries) < 64 {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}

// selectedProject returns the project under the cursor.
func (m Model) selectedProject() (projectItem, bool) {
	item, ok := m.projects.SelectedItem().(projectItem)
	return item, ok
}

// visibleLogEntries applies the log panel filters.
func (m Model) visibleLogEntries() []logging.LogEntry {
	if !m.problemsOnly && m.scopeFilter == "" {
		return m.logEntries
	}
	out := make([]logging.LogEntry, 0, len(m.logEntries))
	for _, entry := range m.logEntries {
		if m.problemsOnly && !entry.IsProblem() {
			continue
		}
		if !entry.MatchesScope(m.scopeFilter) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// nextScope returns the scope after current in sorted order, wrapping to ""
// (all scopes) after the last one.
func (m Model) nextScope() string {
	seen := make(map[string]bool)
	for _, entry := range m.logEntries {
		seen[entry.Scope] = true
	}
	scopes := slices.Sorted(maps.Keys(seen))
	if m.scopeFilter == "" {
		if len(scopes) == 0 {
			return ""
		}
		return scopes[0]
	}
	i := slices.Index(scopes, m.scopeFilter)
	if i < 0 || i == len(scopes)-1 {
		return ""
	}
	return scopes[i+1]
}

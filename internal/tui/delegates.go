// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"tsgraph/internal/graph"
)

// projectItem wraps a project node for display in a list.
type projectItem struct {
	node graph.ProjectNode
}

// Title returns the project root for display.
func (i projectItem) Title() string {
	return i.node.Root
}

// Description summarizes the project's targets.
func (i projectItem) Description() string {
	commands := 0
	sync := false
	for _, t := range i.node.Targets {
		commands += len(t.Options.Commands)
		sync = sync || t.HasSyncGenerators()
	}
	desc := fmt.Sprintf("%d targets | %d commands", len(i.node.Targets), commands)
	if sync {
		desc += " | sync"
	}
	return desc
}

// FilterValue returns the value to filter on.
func (i projectItem) FilterValue() string {
	return i.node.Root
}

// projectDelegate handles rendering of project items in a list.
type projectDelegate struct {
	styles *Styles
}

func newProjectDelegate(styles *Styles) projectDelegate {
	return projectDelegate{styles: styles}
}

// Height returns the height of a single item.
func (d projectDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d projectDelegate) Spacing() int {
	return 1
}

// Update handles item-specific updates.
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single project item.
func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(projectItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Text().Hex))
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Subtext0().Hex))

	indicator := "  "
	if isSelected {
		titleStyle = titleStyle.
			Bold(true).
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
		descStyle = descStyle.
			Foreground(lipgloss.Color(d.styles.flavor.Overlay0().Hex))
		indicator = lipgloss.NewStyle().
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex)).
			Render("▸ ")
	}

	bullet := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Blue().Hex)).
		Render("●")

	// Leave room for the indicator and bullet.
	textWidth := max(m.Width()-4, 1)
	title := titleStyle.Render(ansi.Truncate(pi.Title(), textWidth, "…"))
	desc := descStyle.Render(ansi.Truncate(pi.Description(), textWidth, "…"))

	_, _ = fmt.Fprintf(w, "%s%s %s\n%s%s", indicator, bullet, title, "    ", desc)
}

// toListItems converts a graph result to list items ordered by root.
func toListItems(result graph.Result) []list.Item {
	roots := result.Roots()
	items := make([]list.Item, len(roots))
	for i, root := range roots {
		items[i] = projectItem{node: result.Projects[root]}
	}
	return items
}

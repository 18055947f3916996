// pattern: Functional Core

package tui

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // Title and workspace (2 lines)
	List      Region // Project list (left, 40%)
	Detail    Region // Selected project's targets (right, 60%)
	Separator Region // Separator between content and logs (1 line when logs open)
	Logs      Region // Log panel when open (60% of content height)
	StatusBar Region // Status bar (1 line)
}

// Fixed heights for chrome elements
const (
	headerHeight    = 2 // Title + subtitle
	statusBarHeight = 1 // Status bar
	separatorHeight = 1 // Separator when log panel open
	minContent      = 4
)

// ComputeLayout calculates regions based on terminal dimensions.
// When logPanelOpen is true, the content area splits 40/60 vertically (content/logs).
func ComputeLayout(width, height int, logPanelOpen bool) Layout {
	available := height - headerHeight - statusBarHeight
	if available < minContent {
		available = minContent
	}

	contentHeight, logsHeight := available, 0
	if logPanelOpen {
		contentHeight = int(float64(available) * 0.4)
		logsHeight = available - contentHeight - separatorHeight
		if logsHeight < 1 {
			logsHeight = 1
		}
	}

	y := 0
	header := Region{X: 0, Y: y, Width: width, Height: headerHeight}
	y += headerHeight

	listWidth := int(float64(width) * 0.4)
	list := Region{X: 0, Y: y, Width: listWidth, Height: contentHeight}
	detail := Region{X: listWidth, Y: y, Width: width - listWidth, Height: contentHeight}
	y += contentHeight

	var separator, logs Region
	if logPanelOpen {
		separator = Region{X: 0, Y: y, Width: width, Height: separatorHeight}
		y += separatorHeight
		logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}

	return Layout{
		Header:    header,
		List:      list,
		Detail:    detail,
		Separator: separator,
		Logs:      logs,
		StatusBar: Region{X: 0, Y: y, Width: width, Height: statusBarHeight},
	}
}

// ListHeight returns the lines available to list items below the panel header.
func (l Layout) ListHeight() int {
	return max(l.List.Height-1, 1)
}

// DetailSize returns the viewport size inside the detail panel's header,
// left border and padding.
func (l Layout) DetailSize() (width, height int) {
	return max(l.Detail.Width-3, 1), max(l.Detail.Height-1, 1)
}

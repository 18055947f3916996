package tui

import "testing"

func TestComputeLayout_LogPanelClosed(t *testing.T) {
	l := ComputeLayout(100, 30, false)

	if l.Header.Height != 2 || l.StatusBar.Height != 1 {
		t.Fatalf("chrome heights = %d/%d, want 2/1", l.Header.Height, l.StatusBar.Height)
	}
	if l.List.Height != 27 {
		t.Errorf("List.Height = %d, want 27", l.List.Height)
	}
	if l.List.Width != 40 || l.Detail.Width != 60 {
		t.Errorf("widths = %d/%d, want 40/60", l.List.Width, l.Detail.Width)
	}
	if l.Detail.X != l.List.Width {
		t.Errorf("Detail.X = %d, want %d", l.Detail.X, l.List.Width)
	}
	if l.Logs.Height != 0 || l.Separator.Height != 0 {
		t.Errorf("closed log panel should have zero height, got logs=%d sep=%d", l.Logs.Height, l.Separator.Height)
	}
	if l.StatusBar.Y != 29 {
		t.Errorf("StatusBar.Y = %d, want 29", l.StatusBar.Y)
	}
}

func TestComputeLayout_LogPanelOpen(t *testing.T) {
	l := ComputeLayout(100, 30, true)

	// 27 lines available: 10 content, 1 separator, 16 logs.
	if l.List.Height != 10 {
		t.Errorf("List.Height = %d, want 10", l.List.Height)
	}
	if l.Separator.Height != 1 {
		t.Errorf("Separator.Height = %d, want 1", l.Separator.Height)
	}
	if l.Logs.Height != 16 {
		t.Errorf("Logs.Height = %d, want 16", l.Logs.Height)
	}
	if l.Logs.Y != l.Separator.Y+1 {
		t.Errorf("Logs.Y = %d, want %d", l.Logs.Y, l.Separator.Y+1)
	}
	total := l.Header.Height + l.List.Height + l.Separator.Height + l.Logs.Height + l.StatusBar.Height
	if total != 30 {
		t.Errorf("total height = %d, want 30", total)
	}
}

func TestComputeLayout_TinyTerminal(t *testing.T) {
	l := ComputeLayout(10, 3, true)

	if l.List.Height < 1 || l.Logs.Height < 1 {
		t.Errorf("regions must keep at least one line, got list=%d logs=%d", l.List.Height, l.Logs.Height)
	}
	if l.ListHeight() < 1 {
		t.Errorf("ListHeight() = %d, want >= 1", l.ListHeight())
	}
	w, h := l.DetailSize()
	if w < 1 || h < 1 {
		t.Errorf("DetailSize() = %dx%d, want positive", w, h)
	}
}

func TestLayout_DetailSize(t *testing.T) {
	l := ComputeLayout(100, 30, false)
	w, h := l.DetailSize()

	if w != 57 || h != 26 {
		t.Errorf("DetailSize() = %dx%d, want 57x26", w, h)
	}
}

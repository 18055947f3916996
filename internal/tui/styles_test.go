package tui

import (
	"fmt"
	"testing"
)

func TestStyles_AllFlavors(t *testing.T) {
	flavors := []string{"latte", "frappe", "macchiato", "mocha"}

	for _, flavor := range flavors {
		t.Run(flavor, func(t *testing.T) {
			styles := NewStyles(flavor)

			if styles.TitleStyle().Render("x") == "" {
				t.Error("TitleStyle should render content")
			}
			if !styles.ErrorStyle().GetBold() {
				t.Error("ErrorStyle should be bold")
			}
			if styles.BorderColor() == "" {
				t.Error("BorderColor should not be empty")
			}
		})
	}
}

func TestStyles_UnknownFlavorFallsBackToMocha(t *testing.T) {
	unknown := NewStyles("solarized")
	mocha := NewStyles("mocha")

	if unknown.BorderColor() != mocha.BorderColor() {
		t.Errorf("BorderColor = %q, want mocha's %q", unknown.BorderColor(), mocha.BorderColor())
	}
}

func TestStyles_PanelHeaders(t *testing.T) {
	styles := NewStyles("mocha")

	if !styles.PanelHeaderFocusedStyle().GetBold() {
		t.Error("focused panel header should be bold")
	}
	if styles.PanelHeaderUnfocusedStyle().GetBold() {
		t.Error("unfocused panel header should not be bold")
	}
}

func TestStyles_LogLevelStyle(t *testing.T) {
	styles := NewStyles("mocha")

	colors := map[string]bool{}
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		fg := styles.LogLevelStyle(level).GetForeground()
		colors[fmt.Sprint(fg)] = true
	}
	if len(colors) != 4 {
		t.Errorf("expected 4 distinct level colors, got %d", len(colors))
	}

	if fmt.Sprint(styles.LogLevelStyle("TRACE").GetForeground()) != fmt.Sprint(styles.LogLevelStyle("INFO").GetForeground()) {
		t.Error("unknown levels should use the INFO color")
	}
}

// pattern: Functional Core

package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"

	"tsgraph/internal/graph"
)

// RenderProject renders every target of a project node. Lines longer than
// width are truncated; width <= 0 disables truncation.
func RenderProject(styles *Styles, node graph.ProjectNode, width int) string {
	var lines []string
	add := func(s string) {
		if width > 0 {
			s = ansi.Truncate(s, width, "…")
		}
		lines = append(lines, s)
	}
	field := func(label, value string) {
		add(styles.LabelStyle().Render(label+":") + " " + styles.InfoStyle().Render(value))
	}

	add(styles.TitleStyle().Render(node.Root))
	for _, name := range node.TargetNames() {
		target := node.Targets[name]

		add("")
		add(styles.AccentStyle().Render("▸ " + name))
		field("executor", target.Executor)
		field("cwd", target.Options.Cwd)
		field("cache", strconv.FormatBool(target.Cache))
		field("parallel", strconv.FormatBool(target.Options.Parallel))

		inputs := make([]string, len(target.Inputs))
		for i, in := range target.Inputs {
			inputs[i] = in.String()
		}
		field("inputs", strings.Join(inputs, ", "))

		if target.Metadata.Description != "" {
			field("description", target.Metadata.Description)
		}
		if target.HasSyncGenerators() {
			field("sync", strings.Join(target.SyncGeneratorList(), ", "))
		}

		if len(target.Options.Commands) == 0 {
			add(styles.HelpStyle().Render("  no type-check configurations"))
			continue
		}
		add(styles.LabelStyle().Render("commands:"))
		for _, cmd := range target.Options.Commands {
			add("  " + styles.CommandStyle().Render(cmd))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderTable renders one row per project target.
func RenderTable(styles *Styles, result graph.Result) string {
	rows := make([][]string, 0, len(result.Projects))
	for _, root := range result.Roots() {
		node := result.Projects[root]
		for _, name := range node.TargetNames() {
			target := node.Targets[name]
			sync := "-"
			if target.HasSyncGenerators() {
				sync = strings.Join(target.SyncGeneratorList(), ",")
			}
			rows = append(rows, []string{
				root,
				name,
				strconv.Itoa(len(target.Options.Commands)),
				sync,
			})
		}
	}

	headerStyle := styles.LabelStyle().Padding(0, 1)
	cellStyle := styles.InfoStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.BorderColor())).
		Headers("PROJECT", "TARGET", "COMMANDS", "SYNC").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String() + "\n" + styles.HelpStyle().Render(summaryLine(result)) + "\n"
}

func summaryLine(result graph.Result) string {
	commands := 0
	for _, node := range result.Projects {
		for _, target := range node.Targets {
			commands += len(target.Options.Commands)
		}
	}
	return fmt.Sprintf("%d projects, %d type-check commands", len(result.Projects), commands)
}

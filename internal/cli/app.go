// pattern: Functional Core
package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Command represents a single CLI command with its metadata and handler.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(ctx context.Context, args []string) error
}

// Group represents a group of related commands.
type Group struct {
	Name     string
	Summary  string
	Commands map[string]*Command
}

// App represents the top-level CLI application with groups and ungrouped commands.
type App struct {
	groups   map[string]*Group
	commands map[string]*Command
	order    []string
	version  string
	stderr   io.Writer
}

// NewApp creates a new CLI application. Help text goes to stderr.
func NewApp(version string, stderr io.Writer) *App {
	return &App{
		groups:   make(map[string]*Group),
		commands: make(map[string]*Command),
		version:  version,
		stderr:   stderr,
	}
}

// AddGroup creates and registers a new command group.
func (a *App) AddGroup(name, summary string) *Group {
	g := &Group{
		Name:     name,
		Summary:  summary,
		Commands: make(map[string]*Command),
	}
	a.groups[name] = g
	return g
}

// AddCommand registers an ungrouped (top-level) command. Help lists
// commands in registration order.
func (a *App) AddCommand(cmd *Command) {
	if _, ok := a.commands[cmd.Name]; !ok {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// AddCommand registers a command in the group.
func (g *Group) AddCommand(cmd *Command) {
	g.Commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments to the appropriate command.
// It returns true when no command was given and the interactive TUI should
// be launched instead. Errors from commands are returned unprinted.
func (a *App) Execute(ctx context.Context, args []string) (bool, error) {
	// No args: launch TUI
	if len(args) == 0 {
		return true, nil
	}

	name := args[0]
	if name == "help" || name == "--help" || name == "-h" {
		a.PrintHelp(a.stderr)
		return false, nil
	}

	if cmd, ok := a.commands[name]; ok {
		return false, a.run(ctx, cmd, args[1:])
	}

	if group, ok := a.groups[name]; ok {
		// Group with no subcommand, "help", or --help/-h
		if len(args) < 2 || args[1] == "help" || args[1] == "--help" || args[1] == "-h" {
			group.PrintHelp(a.stderr)
			return false, nil
		}

		if cmd, ok := group.Commands[args[1]]; ok {
			return false, a.run(ctx, cmd, args[2:])
		}

		group.PrintHelp(a.stderr)
		return false, fmt.Errorf("unknown %s command %q", group.Name, args[1])
	}

	a.PrintHelp(a.stderr)
	return false, fmt.Errorf("unknown command %q", name)
}

func (a *App) run(ctx context.Context, cmd *Command, args []string) error {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			_, _ = fmt.Fprintf(a.stderr, "%s\n", cmd.Usage)
			return nil
		}
	}
	return cmd.Run(ctx, args)
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "tsgraph %s: type-check target inference for Nx workspaces\n\n", a.version)
	_, _ = fmt.Fprintf(w, "Usage: tsgraph [options] [command]\n\n")
	_, _ = fmt.Fprintf(w, "Commands:\n")

	for _, name := range a.order {
		cmd := a.commands[name]
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	_, _ = fmt.Fprintf(w, "  %-10s %s\n", "(none)", "Browse inferred projects interactively")

	if len(a.groups) > 0 {
		_, _ = fmt.Fprintf(w, "\nCommand Groups:\n")
		for _, name := range slices.Sorted(maps.Keys(a.groups)) {
			group := a.groups[name]
			_, _ = fmt.Fprintf(w, "  %-10s %s\n", group.Name, group.Summary)
		}
		_, _ = fmt.Fprintf(w, "\nUse \"tsgraph <group> help\" for group details.\n")
	}

	_, _ = fmt.Fprintf(w, "\nOptions:\n")
}

// PrintHelp prints help for a specific group.
func (g *Group) PrintHelp(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: tsgraph %s <command>\n\n", g.Name)
	_, _ = fmt.Fprintf(w, "Commands:\n")
	// Sort command names for deterministic output
	for _, name := range slices.Sorted(maps.Keys(g.Commands)) {
		cmd := g.Commands[name]
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	_, _ = fmt.Fprintf(w, "\nUse \"tsgraph %s <command> --help\" for command details.\n", g.Name)
}

// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
)

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, env *Env) *App {
	app := NewApp(version, env.Stderr)

	app.AddCommand(&Command{
		Name:    "infer",
		Summary: "Infer type-check targets and print the project graph",
		Usage:   "Usage: tsgraph infer [--format table|json|yaml] [--target-name NAME] [--out FILE]",
		Run: func(ctx context.Context, args []string) error {
			return runInfer(ctx, env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "show",
		Summary: "Show the inferred targets of one project",
		Usage:   "Usage: tsgraph show [--format text|json|yaml] [--target-name NAME] <project-root>",
		Run: func(ctx context.Context, args []string) error {
			return runShow(ctx, env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "watch",
		Summary: "Re-infer on configuration changes, optionally serving the graph",
		Usage:   "Usage: tsgraph watch [--serve[=ADDR]] [--no-tui] [--target-name NAME] [--debounce DURATION]",
		Run: func(ctx context.Context, args []string) error {
			return runWatch(ctx, env, args)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: tsgraph version",
		Run: func(ctx context.Context, args []string) error {
			_, err := fmt.Fprintln(env.Stdout, version)
			return err
		},
	})

	instanceGroup := app.AddGroup("instance", "Talk to a running watcher")
	RegisterInstanceCommands(instanceGroup, env)

	return app
}

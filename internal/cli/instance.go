// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"tsgraph/internal/config"
	"tsgraph/internal/instance"
)

// discoverFunc locates a running watcher from its data directory.
type discoverFunc func(dataDir string) (string, error)

// RegisterInstanceCommands adds the commands that talk to a running watcher.
func RegisterInstanceCommands(g *Group, env *Env) {
	g.AddCommand(&Command{
		Name:    "status",
		Summary: "Show the running watcher's latest inference",
		Usage:   "Usage: tsgraph instance status [--graph]",
		Run: func(ctx context.Context, args []string) error {
			return runStatus(env, args, instance.Discover)
		},
	})

	g.AddCommand(&Command{
		Name:    "refresh",
		Summary: "Ask the running watcher to drop its cache and re-infer",
		Usage:   "Usage: tsgraph instance refresh",
		Run: func(ctx context.Context, args []string) error {
			return runRefresh(env, instance.Discover)
		},
	})

	g.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed watcher",
		Usage:   "Usage: tsgraph instance cleanup",
		Run: func(ctx context.Context, args []string) error {
			return runCleanup(env)
		},
	})
}

// runStatus prints the watcher's health summary, or the full graph with --graph.
func runStatus(env *Env, args []string, discover discoverFunc) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	showGraph := fs.Bool("graph", false, "print the latest graph as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	baseURL, err := discover(config.DataDir(env.Workspace))
	if err != nil {
		return err
	}
	client := instance.NewClient(baseURL)

	if *showGraph {
		data, err := client.Graph()
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(data)
		return err
	}

	status, err := client.Health()
	if err != nil {
		return err
	}
	printHealth(env, baseURL, status)
	return nil
}

func runRefresh(env *Env, discover discoverFunc) error {
	baseURL, err := discover(config.DataDir(env.Workspace))
	if err != nil {
		return err
	}

	body, err := instance.NewClient(baseURL).Refresh()
	if err != nil {
		return err
	}
	var status instance.HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	printHealth(env, baseURL, status)
	return nil
}

func printHealth(env *Env, baseURL string, status instance.HealthStatus) {
	_, _ = fmt.Fprintf(env.Stdout, "watcher:   %s (%s)\n", baseURL, status.Status)
	_, _ = fmt.Fprintf(env.Stdout, "workspace: %s\n", status.Workspace)
	_, _ = fmt.Fprintf(env.Stdout, "projects:  %d from %d tsconfig files\n", status.Projects, status.ConfigFiles)
	if !status.GeneratedAt.IsZero() {
		_, _ = fmt.Fprintf(env.Stdout, "updated:   %s\n", status.GeneratedAt.Local().Format(time.DateTime))
	}
	if status.LastError != "" {
		_, _ = fmt.Fprintf(env.Stdout, "error:     %s\n", status.LastError)
	}
}

// runCleanup removes stale lock and port files from a crashed watcher.
func runCleanup(env *Env) error {
	removed, err := instance.RemoveStale(config.DataDir(env.Workspace))
	if errors.Is(err, instance.ErrAlreadyRunning) {
		return errors.New("a tsgraph watcher is running for this workspace; stop it first")
	}
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		_, _ = fmt.Fprintln(env.Stdout, "Nothing to clean up.")
		return nil
	}
	_, _ = fmt.Fprintln(env.Stdout, "Cleaned up stale lock and port files.")
	return nil
}

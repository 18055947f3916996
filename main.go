// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"tsgraph/internal/cli"
	"tsgraph/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses global flags, dispatches the command and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("tsgraph", flag.ContinueOnError)
	flags.SetOutput(stderr)
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flags.SetInterspersed(false)

	workspace := flags.StringP("workspace", "w", "", "workspace root (default: nearest directory with nx.json)")
	configDir := flags.StringP("config-dir", "c", "", "config directory (default: <workspace>/.tsgraph.yaml or ~/.config/tsgraph)")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn or error (default from config)")

	flags.Usage = func() {
		cli.BuildApp(version, &cli.Env{Stdout: stdout, Stderr: stderr}).PrintHelp(stderr)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		// ContinueOnError leaves reporting to the caller.
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		flags.Usage()
		return 2
	}

	env, err := cli.NewEnv(*workspace, *configDir, *logLevel)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	env.Stdout, env.Stderr = stdout, stderr

	app := cli.BuildApp(version, env)
	launchTUI, err := app.Execute(ctx, flags.Args())
	if err == nil && launchTUI {
		err = runTUI(ctx, env)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// runTUI launches the interactive project browser.
func runTUI(ctx context.Context, env *cli.Env) error {
	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}

	logManager, err := env.OpenLogs(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("application starting", "workspace", env.Workspace, "version", version)

	svc, err := env.NewService(cfg, "", logManager)
	if err != nil {
		return err
	}

	model := tui.NewModel(cfg.Theme, env.Workspace, svc.Infer, logManager.Entries(), logManager.For("tui"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		appLogger.Error("application exited with error", "error", err)
		return fmt.Errorf("running program: %w", err)
	}

	appLogger.Info("application stopped")
	return nil
}

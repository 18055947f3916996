// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"tsgraph/internal/config"
	"tsgraph/internal/events"
	"tsgraph/internal/inference"
	"tsgraph/internal/instance"
	"tsgraph/internal/tui"
	"tsgraph/internal/watch"
	"tsgraph/internal/web"
)

// defaultServeAddr is used by a bare --serve.
const defaultServeAddr = "127.0.0.1:0"

const shutdownTimeout = 5 * time.Second

// runWatch re-infers the graph whenever configuration files change. With
// --serve the latest graph is published over HTTP; without --no-tui the
// project browser follows the updates.
func runWatch(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	serve := fs.String("serve", "", "serve the graph API on `addr` (default "+defaultServeAddr+")")
	fs.Lookup("serve").NoOptDefVal = defaultServeAddr
	noTUI := fs.Bool("no-tui", false, "print a line per update instead of opening the project browser")
	targetName := fs.StringP("target-name", "t", "", "name of the inferred type-check target")
	debounce := fs.Duration("debounce", 0, "quiet period before re-inferring (default 300ms)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("watch: unexpected arguments %v", fs.Args())
	}

	var webCfg web.Config
	if *serve != "" {
		var err error
		if webCfg, err = parseServeAddr(*serve); err != nil {
			return err
		}
	}

	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}

	dataDir := config.DataDir(env.Workspace)
	fl, err := instance.Lock(dataDir)
	if err != nil {
		return err
	}
	defer instance.Cleanup(dataDir, fl)

	var console io.Writer
	if *noTUI {
		console = env.Stderr
	}
	logs, err := env.OpenLogs(cfg, console)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()
	logger := logs.For("app")

	svc, err := env.NewService(cfg, *targetName, logs)
	if err != nil {
		return err
	}

	var (
		program *tea.Program
		server  *web.Server
	)
	sendTUI := func(msg any) {
		if program != nil {
			program.Send(msg)
		}
	}
	publishWeb := func(msg any) {
		if server != nil {
			server.Publish(msg)
		}
	}
	report := func(snap inference.Snapshot) {
		if *noTUI {
			_, _ = fmt.Fprintf(env.Stdout, "%s  %d projects from %d tsconfig files (%s)\n",
				snap.GeneratedAt.Format("15:04:05"), len(snap.Result.Projects), len(snap.ConfigFiles),
				snap.Duration.Round(time.Millisecond))
		}
	}

	// inferAndPublish runs inference and pushes the outcome to web
	// subscribers. The TUI receives results through its own command.
	inferAndPublish := func(ctx context.Context) (inference.Snapshot, error) {
		snap, err := svc.Infer(ctx)
		if err != nil {
			publishWeb(events.InferenceFailedMsg{Err: err})
			return snap, err
		}
		publishWeb(events.GraphUpdatedMsg{Snapshot: snap})
		report(snap)
		return snap, nil
	}
	inferAndNotify := func(ctx context.Context) error {
		snap, err := inferAndPublish(ctx)
		if err != nil {
			sendTUI(events.InferenceFailedMsg{Err: err})
			return err
		}
		sendTUI(events.GraphUpdatedMsg{Snapshot: snap})
		return nil
	}

	w, err := watch.New(watch.Config{
		Root:     env.Workspace,
		Ignore:   cfg.Ignore,
		Debounce: *debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			logger.Info("workspace changed", "paths", changed)
			sendTUI(events.FilesChangedMsg{Paths: changed})
			if err := inferAndNotify(ctx); err != nil {
				logger.Warn("re-inference failed", "error", err)
			}
			return nil
		},
	}, logs.For("watch"))
	if err != nil {
		return err
	}

	if !*noTUI {
		model := tui.NewModel(cfg.Theme, env.Workspace, inferAndPublish, logs.Entries(), logs.For("tui"))
		program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	} else if _, err := inferAndPublish(ctx); err != nil {
		logger.Warn("initial inference failed", "error", err)
		_, _ = fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}

	var ln net.Listener
	if *serve != "" {
		refresh := func(ctx context.Context) error {
			svc.Invalidate()
			return inferAndNotify(ctx)
		}
		// Listen reports the URL synchronously; the program may not run yet.
		notify := func(msg any) { go sendTUI(msg) }
		server = web.New(webCfg, svc, refresh, notify, logs)
		if ln, err = server.Listen(); err != nil {
			return err
		}
		if err := instance.WritePort(dataDir, server.Addr()); err != nil {
			logger.Error("failed to write port file", "error", err)
		}
		if *noTUI {
			_, _ = fmt.Fprintf(env.Stderr, "serving graph on http://%s\n", server.Addr())
		}
	}

	gctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(gctx)

	g.Go(func() error { return w.Run(gctx) })

	if server != nil {
		g.Go(func() error {
			if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return server.Shutdown(sctx)
		})
	}

	if program != nil {
		g.Go(func() error {
			defer cancel()
			if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			program.Quit()
			return nil
		})
	}

	logger.Info("watch started", "workspace", env.Workspace, "serve", *serve != "", "tui", program != nil)
	err = g.Wait()
	logger.Info("watch stopped")
	return err
}

// parseServeAddr splits host:port into a web.Config.
func parseServeAddr(addr string) (web.Config, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return web.Config{}, fmt.Errorf("invalid --serve address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return web.Config{}, fmt.Errorf("invalid --serve port %q", portStr)
	}
	return web.Config{Bind: host, Port: port}, nil
}

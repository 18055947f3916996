// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"

	"tsgraph/internal/graph"
	"tsgraph/internal/tui"
)

const (
	formatTable = "table"
	formatText  = "text"
)

// runInfer infers the workspace graph once and prints it.
func runInfer(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	format := fs.StringP("format", "f", "", "output format: table, json or yaml (default from config)")
	targetName := fs.StringP("target-name", "t", "", "name of the inferred type-check target")
	out := fs.StringP("out", "o", "", "write output to `file` instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("infer: unexpected arguments %v", fs.Args())
	}

	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}
	if *format == "" {
		*format = cfg.Output
	}
	if *format != formatTable {
		if _, err := graph.ParseFormat(*format); err != nil {
			return fmt.Errorf("infer: %w", err)
		}
	}

	logs, err := env.OpenLogs(cfg, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()

	svc, err := env.NewService(cfg, *targetName, logs)
	if err != nil {
		return err
	}
	snap, err := svc.Infer(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if *format == formatTable {
		_, _ = io.WriteString(&buf, tui.RenderTable(tui.NewStyles(cfg.Theme), snap.Result))
	} else if err := graph.Encode(&buf, snap.Result, graph.Format(*format)); err != nil {
		return fmt.Errorf("infer: encode: %w", err)
	}

	if *out == "" {
		_, err := env.Stdout.Write(buf.Bytes())
		return err
	}
	data := buf.Bytes()
	if *format == formatTable {
		data = []byte(ansi.Strip(buf.String()))
	}
	if err := afero.WriteFile(env.FS, *out, data, 0644); err != nil {
		return fmt.Errorf("infer: write output: %w", err)
	}
	logs.For("app").Info("graph written", "path", *out, "projects", len(snap.Result.Projects))
	return nil
}

// runShow prints the inferred targets of one project.
func runShow(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	format := fs.StringP("format", "f", formatText, "output format: text, json or yaml")
	targetName := fs.StringP("target-name", "t", "", "name of the inferred type-check target")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: tsgraph show <project-root>")
	}
	if *format != formatText {
		if _, err := graph.ParseFormat(*format); err != nil {
			return fmt.Errorf("show: %w", err)
		}
	}

	root, err := ProjectRootArg(env.Workspace, fs.Arg(0))
	if err != nil {
		return err
	}

	cfg, err := env.LoadConfig()
	if err != nil {
		return err
	}
	logs, err := env.OpenLogs(cfg, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()

	svc, err := env.NewService(cfg, *targetName, logs)
	if err != nil {
		return err
	}
	snap, err := svc.Infer(ctx)
	if err != nil {
		return err
	}

	node, ok := snap.Result.Project(root)
	if !ok {
		return fmt.Errorf("no inferred project at %q (run 'tsgraph infer' to list projects)", root)
	}

	if *format == formatText {
		_, err := fmt.Fprintln(env.Stdout, tui.RenderProject(tui.NewStyles(cfg.Theme), node, 0))
		return err
	}
	single := graph.Result{Projects: map[string]graph.ProjectNode{root: node}}
	return graph.Encode(env.Stdout, single, graph.Format(*format))
}

// ProjectRootArg converts a user-supplied project path into the
// workspace-relative, slash-separated root used as a graph key. Absolute
// paths must lie inside the workspace.
func ProjectRootArg(workspace, arg string) (string, error) {
	p := arg
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(workspace, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%s is outside the workspace %s", arg, workspace)
		}
		p = rel
	}
	root := path.Clean(filepath.ToSlash(p))
	if root == ".." || strings.HasPrefix(root, "../") {
		return "", fmt.Errorf("%s is outside the workspace %s", arg, workspace)
	}
	return root, nil
}

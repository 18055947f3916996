package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tsgraph/internal/config"
	"tsgraph/internal/instance"
)

func newWatcherStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/health":
			_, _ = w.Write([]byte(`{"status":"ok","workspace":"/ws","projects":2,"config_files":3,"generated_at":"2026-01-02T03:04:05Z"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/graph":
			_, _ = w.Write([]byte(`{"projects":{}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/refresh":
			_, _ = w.Write([]byte(`{"status":"ok","workspace":"/ws","projects":4,"config_files":5,"last_error":"stale"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStatus_PrintsHealth(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	server := newWatcherStub(t)

	var gotDataDir string
	discover := func(dataDir string) (string, error) {
		gotDataDir = dataDir
		return server.URL, nil
	}

	if err := runStatus(env, nil, discover); err != nil {
		t.Fatalf("status error = %v", err)
	}
	if gotDataDir != config.DataDir(env.Workspace) {
		t.Errorf("discover called with %q, want %q", gotDataDir, config.DataDir(env.Workspace))
	}
	for _, want := range []string{server.URL, "workspace: /ws", "projects:  2 from 3 tsconfig files", "updated:"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("status output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestStatus_Graph(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	server := newWatcherStub(t)

	err := runStatus(env, []string{"--graph"}, func(string) (string, error) { return server.URL, nil })
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if stdout.String() != `{"projects":{}}` {
		t.Errorf("status --graph output = %q", stdout.String())
	}
}

func TestStatus_NoWatcher(t *testing.T) {
	env, _, _ := newTestEnv(t)
	wantErr := errors.New("no running tsgraph watcher found")

	err := runStatus(env, nil, func(string) (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestRefresh_PrintsHealth(t *testing.T) {
	env, stdout, _ := newTestEnv(t)
	server := newWatcherStub(t)

	if err := runRefresh(env, func(string) (string, error) { return server.URL, nil }); err != nil {
		t.Fatalf("refresh error = %v", err)
	}
	for _, want := range []string{"projects:  4 from 5 tsconfig files", "error:     stale"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("refresh output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestCleanup(t *testing.T) {
	t.Run("nothing to clean", func(t *testing.T) {
		env, stdout, _ := newTestEnv(t)
		if err := runCleanup(env); err != nil {
			t.Fatalf("cleanup error = %v", err)
		}
		if !strings.Contains(stdout.String(), "Nothing to clean up") {
			t.Errorf("output = %q, want nothing-to-do message", stdout.String())
		}
	})

	t.Run("stale port file", func(t *testing.T) {
		env, stdout, _ := newTestEnv(t)
		dataDir := config.DataDir(env.Workspace)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := instance.WritePort(dataDir, "127.0.0.1:1"); err != nil {
			t.Fatal(err)
		}

		if err := runCleanup(env); err != nil {
			t.Fatalf("cleanup error = %v", err)
		}
		if !strings.Contains(stdout.String(), "Cleaned up") {
			t.Errorf("output = %q, want cleanup message", stdout.String())
		}
		if _, err := os.Stat(filepath.Join(dataDir, "tsgraph.port")); !os.IsNotExist(err) {
			t.Error("port file should be removed")
		}
	})

	t.Run("watcher running", func(t *testing.T) {
		env, _, _ := newTestEnv(t)
		dataDir := config.DataDir(env.Workspace)
		fl, err := instance.Lock(dataDir)
		if err != nil {
			t.Fatal(err)
		}
		defer instance.Cleanup(dataDir, fl)

		err = runCleanup(env)
		if err == nil || !strings.Contains(err.Error(), "stop it first") {
			t.Errorf("err = %v, want running-watcher error", err)
		}
	})
}

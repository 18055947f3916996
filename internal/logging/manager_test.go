// pattern: Imperative Shell

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newFileManager(t *testing.T, level string) (*Manager, string) {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "logs", "tsgraph.log")
	mgr, err := NewManager(Config{
		FilePath:       logFile,
		Level:          level,
		ChannelBufSize: 100,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return mgr, logFile
}

func TestNewManager_CreatesLogDirectory(t *testing.T) {
	mgr, logFile := newFileManager(t, "debug")
	defer func() { _ = mgr.Close() }()

	if _, err := os.Stat(filepath.Dir(logFile)); err != nil {
		t.Errorf("log directory not created: %v", err)
	}
	if mgr.Entries() == nil {
		t.Error("Entries() returned nil")
	}
}

func TestNewManager_WithoutFile(t *testing.T) {
	mgr, err := NewManager(Config{Level: "info"})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	mgr.For("app").Info("no file configured")
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestManager_For_CachesByScope(t *testing.T) {
	mgr, _ := newFileManager(t, "debug")
	defer func() { _ = mgr.Close() }()

	a := mgr.For("plugin")
	if a != mgr.For("plugin") {
		t.Error("For() should return cached logger for same scope")
	}
	if a == mgr.For("batch") {
		t.Error("For() should return different logger for different scope")
	}
	if a.Scope() != "plugin" {
		t.Errorf("Scope() = %q, want %q", a.Scope(), "plugin")
	}
}

func TestManager_LoggingToChannel(t *testing.T) {
	mgr, _ := newFileManager(t, "debug")
	defer func() { _ = mgr.Close() }()

	mgr.For("watch").Info("graph rebuilt", "projects", 3)
	_ = mgr.Sync()

	select {
	case entry := <-mgr.Entries():
		if entry.Message != "graph rebuilt" {
			t.Errorf("Message = %q, want %q", entry.Message, "graph rebuilt")
		}
		if entry.Scope != "watch" {
			t.Errorf("Scope = %q, want %q", entry.Scope, "watch")
		}
		if entry.Fields["projects"] != float64(3) {
			t.Errorf("Fields[projects] = %v, want 3", entry.Fields["projects"])
		}
	default:
		t.Fatal("entry not received on channel after Sync()")
	}
}

func TestManager_LevelFiltersChannel(t *testing.T) {
	mgr, _ := newFileManager(t, "warn")
	defer func() { _ = mgr.Close() }()

	logger := mgr.For("plugin")
	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")
	_ = mgr.Sync()

	select {
	case entry := <-mgr.Entries():
		if entry.Message != "shown" {
			t.Errorf("first entry = %q, want %q", entry.Message, "shown")
		}
		if entry.Level != "WARN" {
			t.Errorf("Level = %q, want WARN", entry.Level)
		}
	default:
		t.Fatal("warn entry not received")
	}
}

func TestManager_LoggingToFile(t *testing.T) {
	mgr, logFile := newFileManager(t, "debug")

	mgr.For("discovery").Info("scan finished", "matches", 2)
	_ = mgr.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)
	for _, want := range []string{"scan finished", `"logger":"discovery"`, `"matches":2`} {
		if !strings.Contains(content, want) {
			t.Errorf("log file should contain %s, got: %s", want, content)
		}
	}
}

func TestManager_ConsoleUsesOwnLevel(t *testing.T) {
	var console bytes.Buffer
	mgr, err := NewManager(Config{
		Level:        "debug",
		Console:      &console,
		ConsoleLevel: "warn",
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	logger := mgr.For("app")
	logger.Info("quiet on console")
	logger.Error("loud on console", "error", "boom")
	_ = mgr.Close()

	out := console.String()
	if strings.Contains(out, "quiet on console") {
		t.Errorf("console should not contain info entry: %q", out)
	}
	if !strings.Contains(out, "loud on console") {
		t.Errorf("console should contain error entry: %q", out)
	}
}

func TestScopedLogger_With(t *testing.T) {
	mgr, _ := newFileManager(t, "debug")
	defer func() { _ = mgr.Close() }()

	mgr.For("batch").With("batch_id", "b1").Info("started")
	_ = mgr.Sync()

	select {
	case entry := <-mgr.Entries():
		if entry.Fields["batch_id"] != "b1" {
			t.Errorf("Fields[batch_id] = %v, want b1", entry.Fields["batch_id"])
		}
	default:
		t.Fatal("entry not received")
	}
}

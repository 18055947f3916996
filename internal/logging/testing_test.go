// pattern: Imperative Shell

package logging

import "testing"

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Debug("discarded")
	logger.Info("discarded")
	logger.Warn("discarded")
	logger.Error("discarded")

	if logger.With("key", "value") == nil {
		t.Fatal("With() returned nil")
	}
}

func TestTestLogManager_CapturesAllLevels(t *testing.T) {
	lm := NewTestLogManager(10)
	defer func() { _ = lm.Close() }()

	logger := lm.For("batch")
	logger.Debug("dbg")
	logger.Error("err")

	entries := lm.Drain()
	if len(entries) != 2 {
		t.Fatalf("Drain() returned %d entries, want 2", len(entries))
	}
	if entries[0].Level != "DEBUG" || entries[1].Level != "ERROR" {
		t.Errorf("levels = %s,%s want DEBUG,ERROR", entries[0].Level, entries[1].Level)
	}
	if entries[0].Scope != "batch" {
		t.Errorf("Scope = %q, want batch", entries[0].Scope)
	}
	if lm.For("batch") != logger {
		t.Error("For() should cache loggers by scope")
	}
}

func TestTestLogManager_Channel(t *testing.T) {
	lm := NewTestLogManager(5)
	defer func() { _ = lm.Close() }()

	lm.For("web").Info("hello")
	select {
	case e := <-lm.Channel():
		if e.Message != "hello" {
			t.Errorf("Message = %q, want hello", e.Message)
		}
	default:
		t.Error("no entry received on channel")
	}
}

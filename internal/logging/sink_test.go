// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"testing"
	"time"
)

func zapLine(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatal(err)
	}
	return append(data, '\n')
}

func TestChannelSink_Write(t *testing.T) {
	sink := NewChannelSink(10)
	defer sink.Close()

	data := zapLine(t, map[string]any{
		"level":  "info",
		"ts":     1700000000.5,
		"logger": "plugin",
		"msg":    "creating nodes",
		"caller": "plugin.go:1",
		"files":  4,
	})

	n, err := sink.Write(data)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(data) {
		t.Errorf("Write() = %d, want %d", n, len(data))
	}

	select {
	case got := <-sink.Entries():
		if got.Message != "creating nodes" {
			t.Errorf("Message = %q, want %q", got.Message, "creating nodes")
		}
		if got.Scope != "plugin" {
			t.Errorf("Scope = %q, want %q", got.Scope, "plugin")
		}
		if got.Level != "INFO" {
			t.Errorf("Level = %q, want INFO", got.Level)
		}
		if got.Timestamp.Unix() != 1700000000 {
			t.Errorf("Timestamp = %v, want unix 1700000000", got.Timestamp)
		}
		if _, ok := got.Fields["caller"]; ok {
			t.Error("caller should not be kept in Fields")
		}
		if got.Fields["files"] != float64(4) {
			t.Errorf("Fields[files] = %v, want 4", got.Fields["files"])
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for log entry")
	}
}

func TestChannelSink_DefaultsForMissingFields(t *testing.T) {
	sink := NewChannelSink(1)
	defer sink.Close()

	_, _ = sink.Write([]byte(`{"msg":"bare"}`))

	got := <-sink.Entries()
	if got.Level != "INFO" || got.Scope != "app" {
		t.Errorf("defaults = (%q, %q), want (INFO, app)", got.Level, got.Scope)
	}
}

func TestChannelSink_DropsOldestWhenFull(t *testing.T) {
	sink := NewChannelSink(2)
	defer sink.Close()

	for _, msg := range []string{"one", "two", "three"} {
		if _, err := sink.Write(zapLine(t, map[string]any{"msg": msg})); err != nil {
			t.Fatalf("Write(%s) error = %v", msg, err)
		}
	}

	var got []string
	for len(got) < 2 {
		select {
		case e := <-sink.Entries():
			got = append(got, e.Message)
		default:
			t.Fatalf("expected 2 buffered entries, got %v", got)
		}
	}
	if got[0] != "two" || got[1] != "three" {
		t.Errorf("buffered = %v, want [two three]", got)
	}
}

func TestChannelSink_IgnoresInvalidJSON(t *testing.T) {
	sink := NewChannelSink(1)
	defer sink.Close()

	n, err := sink.Write([]byte("not json"))
	if err != nil || n != len("not json") {
		t.Errorf("Write() = (%d, %v), want (%d, nil)", n, err, len("not json"))
	}
	select {
	case e := <-sink.Entries():
		t.Errorf("unexpected entry %+v", e)
	default:
	}
}

func TestChannelSink_Close(t *testing.T) {
	sink := NewChannelSink(10)
	_ = sink.Close()
	_ = sink.Close()

	if _, err := sink.Write([]byte(`{"msg":"late"}`)); err == nil {
		t.Error("Write() after Close() should return error")
	}
	if err := sink.Sync(); err != nil {
		t.Errorf("Sync() error = %v", err)
	}
}

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo})

	logger.Info("sync complete", "upserted", 3)

	out := buf.String()
	if !strings.Contains(out, "sync complete") {
		t.Errorf("expected message in output, got: %s", out)
	}
	if !strings.Contains(out, "upserted=3") {
		t.Errorf("expected attribute in output, got: %s", out)
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("indexed", "doc_id", "kb:load-balancing")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "indexed" {
		t.Errorf("msg = %v, want %q", entry["msg"], "indexed")
	}
	if entry["doc_id"] != "kb:load-balancing" {
		t.Errorf("doc_id = %v, want %q", entry["doc_id"], "kb:load-balancing")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-level messages leaked: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must accept all levels.
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")
}

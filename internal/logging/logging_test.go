package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerWithFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "attool.log")

	logger, err := NewLoggerWithFile(false, path)
	if err != nil {
		t.Fatalf("NewLoggerWithFile error: %v", err)
	}

	logger.Debugw("Debug entry", "file", "clip.wav")
	logger.Infow("Info entry", "count", 2)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, `"msg":"Info entry"`) {
		t.Errorf("log file missing info entry: %s", content)
	}
	// the file sink records debug entries even when the console does not
	if !strings.Contains(content, `"file":"clip.wav"`) {
		t.Errorf("log file missing debug entry: %s", content)
	}
}

func TestNewLoggerWithFileEmptyPath(t *testing.T) {
	logger, err := NewLoggerWithFile(true, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected console logger")
	}
}

func TestNamedKeepsCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := New(core).Named("pipeline")

	logger.Warnw("Skipping file", "path", "notes.txt")

	entries := logs.FilterMessage("Skipping file").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "pipeline" {
		t.Errorf("logger name = %q, want %q", entries[0].LoggerName, "pipeline")
	}
}

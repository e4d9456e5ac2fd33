package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"eligibility/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "service.log")
	logger, level, err := New(config.Log{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level.Level() != zapcore.InfoLevel {
		t.Fatalf("expected info level, got %s", level.Level())
	}

	logger.Debug("hidden")
	logger.Info("prediction stored", zap.String("label", "Eligible"))
	_ = logger.Sync()

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(payload), `"msg":"prediction stored"`) {
		t.Fatalf("missing log line: %s", payload)
	}
	if strings.Contains(string(payload), "hidden") {
		t.Fatal("debug line written at info level")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(config.Log{Level: "loud"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	applyLevel(path, level, zaptest.NewLogger(t))
	if level.Level() != zapcore.DebugLevel {
		t.Fatalf("expected debug, got %s", level.Level())
	}

	if err := os.WriteFile(path, []byte("log:\n  level: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	applyLevel(path, level, zaptest.NewLogger(t))
	if level.Level() != zapcore.DebugLevel {
		t.Fatalf("broken config must keep the current level, got %s", level.Level())
	}
}

func TestWatchLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchLevel(ctx, path, level, zaptest.NewLogger(t))
	}()

	deadline := time.Now().Add(5 * time.Second)
	for level.Level() != zapcore.ErrorLevel {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("level not reloaded, still %s", level.Level())
		}
		// Rewrite until the watcher has registered and seen a change.
		if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

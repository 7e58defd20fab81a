// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Setup Tests
// =============================================================================

func TestSetup_Defaults(t *testing.T) {
	l := Setup(Config{Service: "test"})
	defer l.Close()

	if l.Slog() == nil {
		t.Fatal("expected a configured slog.Logger")
	}
	if slog.Default() != l.Slog() {
		t.Error("expected Setup to install the slog default")
	}
}

func TestSetup_NoFileWithoutLogDir(t *testing.T) {
	l := Setup(Config{Service: "test"})
	defer l.Close()

	if l.file != nil {
		t.Error("expected no log file without LogDir")
	}
}

func TestSetup_FileLogging(t *testing.T) {
	dir := t.TempDir()
	l := Setup(Config{Service: "test", LogDir: dir})

	slog.Info("file logging works", "key", "value")

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	filename := "test_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log file line is not JSON: %v", err)
	}
	if entry["msg"] != "file logging works" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry["service"] != "test" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key attribute, got %v", entry["key"])
	}
}

func TestSetup_CreatesLogDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	l := Setup(Config{Service: "test", LogDir: dir})
	defer l.Close()

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected log directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
}

func TestSetup_UnwritableLogDirDegrades(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail.
	base := t.TempDir()
	blocker := filepath.Join(base, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	l := Setup(Config{Service: "test", LogDir: blocker})
	defer l.Close()

	if l.file != nil {
		t.Error("expected file logging to be skipped")
	}

	// stderr logging still works.
	slog.Info("still alive")
}

func TestSetup_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	l := Setup(Config{Service: "test", LogDir: dir, Level: slog.LevelWarn})

	slog.Debug("dropped")
	slog.Info("dropped too")
	slog.Warn("kept")

	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	filename := "test_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if strings.Contains(content, "dropped") {
		t.Error("expected sub-warn messages to be filtered")
	}
	if !strings.Contains(content, "kept") {
		t.Error("expected warn message to be written")
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestClose_WithoutFile(t *testing.T) {
	l := Setup(Config{Service: "test"})
	if err := l.Close(); err != nil {
		t.Errorf("Close without file should succeed, got %v", err)
	}
}

func TestClose_Twice(t *testing.T) {
	l := Setup(Config{Service: "test", LogDir: t.TempDir()})
	if err := l.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
}

// =============================================================================
// multiHandler Tests
// =============================================================================

func newMemoryHandler(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
}

func TestMultiHandler_FanOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		newMemoryHandler(&a, slog.LevelInfo),
		newMemoryHandler(&b, slog.LevelInfo),
	}}

	logger := slog.New(h)
	logger.Info("fan out")

	if !strings.Contains(a.String(), "fan out") {
		t.Error("expected first handler to receive the record")
	}
	if !strings.Contains(b.String(), "fan out") {
		t.Error("expected second handler to receive the record")
	}
}

func TestMultiHandler_PerHandlerLevels(t *testing.T) {
	var debug, warn bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		newMemoryHandler(&debug, slog.LevelDebug),
		newMemoryHandler(&warn, slog.LevelWarn),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected Enabled when any handler accepts the level")
	}

	logger := slog.New(h)
	logger.Debug("debug only")
	logger.Warn("everywhere")

	if !strings.Contains(debug.String(), "debug only") {
		t.Error("expected debug handler to receive debug records")
	}
	if strings.Contains(warn.String(), "debug only") {
		t.Error("expected warn handler to filter debug records")
	}
	if !strings.Contains(warn.String(), "everywhere") {
		t.Error("expected warn handler to receive warn records")
	}
}

func TestMultiHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{newMemoryHandler(&buf, slog.LevelInfo)}}

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("service", "test")}))
	logger.Info("with attrs")

	if !strings.Contains(buf.String(), `"service":"test"`) {
		t.Errorf("expected service attribute, got %s", buf.String())
	}
}

func TestMultiHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{newMemoryHandler(&buf, slog.LevelInfo)}}

	logger := slog.New(h.WithGroup("build"))
	logger.Info("grouped", "nodes", 7)

	if !strings.Contains(buf.String(), `"build":{"nodes":7}`) {
		t.Errorf("expected grouped attribute, got %s", buf.String())
	}
}

// =============================================================================
// expandPath Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"/var/log/aleutian", "/var/log/aleutian"},
		{"relative/logs", "relative/logs"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

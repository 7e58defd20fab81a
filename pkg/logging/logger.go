// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for Aleutian components.
//
// Logging is built on Go's standard library slog package. Output goes to
// stderr following Unix conventions, with an optional JSON log file for
// machine processing:
//
//   - Default: human-readable text on stderr when attached to a terminal,
//     JSON when piped or redirected
//   - Optional: file logging with automatic directory creation
//
// # Basic Usage
//
//	logger := logging.Setup(logging.Config{Service: "policytrace"})
//	defer logger.Close()
//	slog.Info("graph built", "nodes", n)
//
// Setup installs the logger as the slog default, so packages log through
// the plain slog API without carrying a logger handle.
//
// # Security Considerations
//
// This package does NOT automatically redact sensitive data. Callers must
// ensure PII, tokens, and secrets are not logged. Contract and statute
// identifiers are not PII; member or claims data would be, and never
// belongs in a log line.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Format selects the stderr output format.
type Format string

const (
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto Format = "auto"

	// FormatText forces human-readable text output.
	FormatText Format = "text"

	// FormatJSON forces JSON output.
	FormatJSON Format = "json"
)

// Config configures the logger.
//
// A zero-value Config writes Info+ messages to stderr with auto-detected
// format and no file logging.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo.
	Level slog.Level

	// Service is included in every log entry as the "service" attribute.
	Service string

	// Format selects the stderr format. Default: FormatAuto.
	Format Format

	// LogDir enables file logging to the specified directory.
	//
	// When set, logs are written to both stderr and a file named
	// "{Service}_{YYYY-MM-DD}.log". File logs are always JSON. Supports
	// ~ for home directory expansion.
	LogDir string
}

// Logger wraps the configured slog.Logger and owns the optional log file.
//
// Thread Safety: safe for concurrent use. Close releases the file handle
// and must be called once, after the last log line.
type Logger struct {
	slog *slog.Logger

	mu   sync.Mutex
	file *os.File
}

// Setup builds a logger from the config and installs it as the slog
// default.
//
// Setup never fails: if the log file cannot be opened, stderr logging
// still works and the file is skipped.
func Setup(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var stderrHandler slog.Handler
	switch cfg.Format {
	case FormatText:
		stderrHandler = slog.NewTextHandler(os.Stderr, opts)
	case FormatJSON:
		stderrHandler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			stderrHandler = slog.NewTextHandler(os.Stderr, opts)
		} else {
			stderrHandler = slog.NewJSONHandler(os.Stderr, opts)
		}
	}

	l := &Logger{}
	handlers := []slog.Handler{stderrHandler}

	if cfg.LogDir != "" {
		if file := openLogFile(cfg); file != nil {
			l.file = file
			handlers = append(handlers, slog.NewJSONHandler(file, opts))
		}
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = &multiHandler{handlers: handlers}
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	l.slog = slog.New(handler)
	slog.SetDefault(l.slog)
	return l
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close syncs and closes the log file, if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	var errs []error
	if err := l.file.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("sync log file: %w", err))
	}
	if err := l.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	l.file = nil
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// openLogFile creates the log directory and opens today's log file.
// Returns nil on any failure; stderr logging does not depend on it.
func openLogFile(cfg Config) *os.File {
	logDir := expandPath(cfg.LogDir)
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil
	}
	service := cfg.Service
	if service == "" {
		service = "aleutian"
	}
	filename := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, filename),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil
	}
	return file
}

// multiHandler fans out log records to multiple slog handlers. This
// enables simultaneous stderr and file output with different formats.
type multiHandler struct {
	handlers []slog.Handler
}

// Enabled returns true if any handler is enabled for the level.
func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle sends the record to all enabled handlers.
func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WithAttrs returns a new handler with additional attributes.
func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

// WithGroup returns a new handler with a group name.
func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

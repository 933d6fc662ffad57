// Package logging provides the structured application logger used by every rnstd component.
//
// Loggers are constructed explicitly during startup and handed to the components that need
// them. The stdio transport owns stdout, so production loggers write to a file sink (or
// stderr when asked to) and never to stdout.
package logging

import (
	"bytes"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// StderrSink is the log_file value that routes logs to stderr instead of a file.
const StderrSink = "-"

type AppLogger struct {
	logger *log.Logger
	debug  bool
}

// Options configures a new AppLogger.
type Options struct {
	// Output receives formatted log lines. Defaults to stderr.
	Output io.Writer
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Prefix is printed before every message.
	Prefix string
	// ReportCaller adds the calling file:line to each entry.
	ReportCaller bool
}

// ParseLevel converts a textual level into a charmbracelet/log level.
func ParseLevel(level string) (log.Level, error) {
	if strings.TrimSpace(level) == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// New builds an AppLogger writing to opts.Output.
func New(opts Options) (*AppLogger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "rnstd"
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	logger.SetLevel(lvl)

	return &AppLogger{
		logger: logger,
		debug:  lvl <= log.DebugLevel,
	}, nil
}

// NewFileLogger opens (appending) the log file at path and returns a logger writing to it
// together with a close function. A path of "-" logs to stderr; close is then a no-op.
func NewFileLogger(path, level string) (*AppLogger, func() error, error) {
	if strings.TrimSpace(path) == "" || path == StderrSink {
		logger, err := New(Options{Output: os.Stderr, Level: level})
		if err != nil {
			return nil, nil, err
		}
		return logger, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger, err := New(Options{Output: logFile, Level: level, ReportCaller: true})
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}
	return logger, logFile.Close, nil
}

// With returns a child logger that always carries the given key/value pairs.
func (al *AppLogger) With(keyvals ...interface{}) *AppLogger {
	return &AppLogger{
		logger: al.logger.With(keyvals...),
		debug:  al.debug,
	}
}

func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// StandardLog adapts the logger for libraries that want a *log.Logger. Entries are
// written at the given level.
func (al *AppLogger) StandardLog(level log.Level) *stdlog.Logger {
	return al.logger.StandardLog(log.StandardLogOptions{ForceLevel: level})
}

// Log a bubbletea message (debug only)
func (al *AppLogger) LogMessage(msg tea.Msg) {
	if !al.debug {
		return
	}

	al.logger.Debug("Message received",
		"type", fmt.Sprintf("%T", msg),
		"content", fmt.Sprintf("%+v", msg),
	)
}

// Pretty print any object
func (al *AppLogger) DebugObject(name string, obj interface{}) {
	if al.debug {
		al.logger.Debug("Object dump", "name", name, "object", fmt.Sprintf("%+v", obj))
	}
}

// Log performance metrics
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		al.logger.Debug("Performance",
			"operation", operation,
			"duration", time.Since(start),
		)
	}
}

// Testing Helper - NewTestLogger creates a logger that writes to a buffer for testing
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false, // Easier to test without timestamps
		ReportCaller:    false,
		Prefix:          "Test",
	})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{
		logger: logger,
		debug:  true,
	}, &buf
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *AppLogger {
	logger := log.New(io.Discard)
	logger.SetLevel(log.FatalLevel)
	return &AppLogger{logger: logger}
}

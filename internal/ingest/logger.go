package ingest

import (
	"fmt"
	"io"
	"log/slog"
)

// =============================================================================
// LOGGER
// =============================================================================

// Logger is the printf-style logging interface used across the importer.
//
// CUSTOMIZATION: Implement this interface with your preferred logging library.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// NewLogger returns a Logger writing text records to w at level and above.
func NewLogger(w io.Writer, level slog.Level) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{l: slog.New(h)}
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...interface{}) { s.l.Debug(fmt.Sprintf(msg, args...)) }
func (s *slogLogger) Info(msg string, args ...interface{})  { s.l.Info(fmt.Sprintf(msg, args...)) }
func (s *slogLogger) Warn(msg string, args ...interface{})  { s.l.Warn(fmt.Sprintf(msg, args...)) }
func (s *slogLogger) Error(msg string, args ...interface{}) { s.l.Error(fmt.Sprintf(msg, args...)) }

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Package logger provides the structured JSON logging collaborator the
// analysis core is configured with, plus a no-op implementation for tests
// and callers that don't want logging wired in.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/codewatch-dev/codeintel/internal/codeintel/types"
)

// Logger implements types.Logger over logrus with JSON structured output.
type Logger struct {
	*logrus.Logger
}

// LogLevel mirrors types.LogLevel for callers that only depend on this
// package.
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	SilentLevel LogLevel = "silent"
)

var _ types.Logger = (*Logger)(nil)

// New creates a new structured logger instance at info level.
func New() *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)

	return &Logger{Logger: log}
}

// NewWithLevel creates a new logger with the specified level.
func NewWithLevel(level LogLevel) *Logger {
	l := New()
	l.SetLogLevel(level)
	return l
}

// FromConfigLevel maps a types.LogLevel onto the logrus level set.
func FromConfigLevel(level types.LogLevel) *Logger {
	return NewWithLevel(LogLevel(level))
}

// SetLogLevel sets the logging level.
func (l *Logger) SetLogLevel(level LogLevel) {
	switch level {
	case DebugLevel:
		l.Logger.SetLevel(logrus.DebugLevel)
	case InfoLevel:
		l.Logger.SetLevel(logrus.InfoLevel)
	case WarnLevel:
		l.Logger.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		l.Logger.SetLevel(logrus.ErrorLevel)
	case SilentLevel:
		l.Logger.SetLevel(logrus.PanicLevel) // effectively silent: the types.Logger methods never log at panic level
	default:
		l.Logger.SetLevel(logrus.InfoLevel)
	}
}

// Debug implements types.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.Logger.WithFields(fields).Debug(msg)
}

// Info implements types.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.Logger.WithFields(fields).Info(msg)
}

// Warn implements types.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.Logger.WithFields(fields).Warn(msg)
}

// Error implements types.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.Logger.WithFields(fields).Error(msg)
}

// ErrorWithExit logs an error and exits with the given code.
func (l *Logger) ErrorWithExit(msg string, code int) {
	l.Error(msg, nil)
	os.Exit(code)
}

// FatalError logs an error and exits with code 1.
func (l *Logger) FatalError(msg string) {
	l.ErrorWithExit(msg, 1)
}

// Nop is a types.Logger that discards everything; used by tests and by
// callers that don't wire a logger in.
type Nop struct{}

var _ types.Logger = Nop{}

func (Nop) Debug(string, map[string]interface{}) {}
func (Nop) Info(string, map[string]interface{})  {}
func (Nop) Warn(string, map[string]interface{})  {}
func (Nop) Error(string, map[string]interface{}) {}

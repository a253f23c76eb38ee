// Package logger provides the process-wide structured logger.
//
// Libraries in this module never log through this package; they accept a
// logrus.FieldLogger option instead. Commands initialize the logger once
// and hand L() to the libraries they build.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var std = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Initialize sets the level ("debug", "info", "warn", ...) and format
// ("text" or "json").
func Initialize(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	std.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", "text":
		std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		std.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("logger: unknown format %q", format)
	}

	return nil
}

// L returns the process logger.
func L() *logrus.Logger { return std }

// WithFields returns an entry carrying fields.
func WithFields(fields logrus.Fields) *logrus.Entry { return std.WithFields(fields) }

// Debug logs debug messages.
func Debug(message string, args ...any) { std.Debugf(message, args...) }

// Info logs informational messages.
func Info(message string, args ...any) { std.Infof(message, args...) }

// Warn logs warnings.
func Warn(message string, args ...any) { std.Warnf(message, args...) }

// Error logs error messages.
func Error(message string, args ...any) { std.Errorf(message, args...) }

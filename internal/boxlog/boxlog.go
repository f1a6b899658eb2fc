// Package boxlog provides the operator-facing structured logger used by
// the box-add CLI, distinct from pkg/boxui's user-facing progress output.
package boxlog

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// Init configures the global logger. Unrecognised levels fall back to
// info.
func Init(level string, noColor bool) {
	logger = logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if noColor {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: false})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: false})
	}
}

// Get returns the configured logger, initializing it with defaults on
// first use.
func Get() *logrus.Logger {
	if logger == nil {
		Init("info", false)
	}
	return logger
}

// Info logs an info-level message with optional structured fields.
func Info(msg string, fields ...logrus.Fields) {
	Get().WithFields(merge(fields...)).Info(msg)
}

// Debug logs a debug-level message.
func Debug(msg string, fields ...logrus.Fields) {
	Get().WithFields(merge(fields...)).Debug(msg)
}

// Warn logs a warning-level message.
func Warn(msg string, fields ...logrus.Fields) {
	Get().WithFields(merge(fields...)).Warn(msg)
}

// Error logs an error-level message.
func Error(msg string, fields ...logrus.Fields) {
	Get().WithFields(merge(fields...)).Error(msg)
}

// Success logs an info-level message tagged with status=success, for the
// terminal line of a completed box-add.
func Success(msg string, fields ...logrus.Fields) {
	f := merge(fields...)
	f["status"] = "success"
	Get().WithFields(f).Info(msg)
}

func merge(fields ...logrus.Fields) logrus.Fields {
	out := make(logrus.Fields)
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

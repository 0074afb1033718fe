// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance
func NewLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()

	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", logLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// JSON in production, colored text elsewhere
	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger
}

// NewStdLogger adapts a logrus logger into a *log.Logger for components
// that take the standard library interface.
func NewStdLogger(base *logrus.Logger, component string) *log.Logger {
	return log.New(&entryWriter{entry: base.WithField("component", component)}, "", 0)
}

type entryWriter struct {
	entry *logrus.Entry
}

func (w *entryWriter) Write(p []byte) (int, error) {
	w.entry.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

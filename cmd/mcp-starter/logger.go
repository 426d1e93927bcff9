package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/felixgeelhaar/mcp-starter/middleware"
)

// logrusLogger adapts a logrus entry to middleware.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

var _ middleware.Logger = (*logrusLogger)(nil)

func newLogrusLogger(l *logrus.Logger) *logrusLogger {
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) with(fields []middleware.Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	f := make(logrus.Fields, len(fields))
	for _, field := range fields {
		f[field.Key] = field.Value
	}
	return l.entry.WithFields(f)
}

func (l *logrusLogger) Info(msg string, fields ...middleware.Field)  { l.with(fields).Info(msg) }
func (l *logrusLogger) Error(msg string, fields ...middleware.Field) { l.with(fields).Error(msg) }
func (l *logrusLogger) Debug(msg string, fields ...middleware.Field) { l.with(fields).Debug(msg) }
func (l *logrusLogger) Warn(msg string, fields ...middleware.Field)  { l.with(fields).Warn(msg) }

// setupLogging builds the process logger. Output goes to stderr, and to
// logFile as well when it is set. The returned close func releases the file.
func setupLogging(stderr io.Writer, level, logFile string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	l := logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(stderr)

	closeFn := func() error { return nil }
	if lf := strings.TrimSpace(logFile); lf != "" {
		if strings.HasPrefix(lf, "~") {
			if home, err := os.UserHomeDir(); err == nil {
				lf = filepath.Join(home, strings.TrimPrefix(lf, "~"))
			}
		}
		if err := os.MkdirAll(filepath.Dir(lf), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		l.SetOutput(io.MultiWriter(stderr, f))
		closeFn = f.Close
	}
	return l, closeFn, nil
}

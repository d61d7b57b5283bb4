package logging

import (
	"fmt"
	"time"
)

// Logger defines the interface for logging messages.
type Logger interface {
	// Log formats and writes a log message.
	Log(format string, args ...interface{})
	// IsEnabled returns true if the logger is active (e.g., debug mode is on).
	IsEnabled() bool
	// Close flushes and releases any resources held by the logger.
	Close() error
}

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// formatEntry renders one log line with a timestamp prefix.
func formatEntry(now time.Time, format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] %s\n", now.Format(timestampLayout), fmt.Sprintf(format, args...))
}

// NilLogger discards everything. It is the default when neither --debug
// nor --verbose is given.
type NilLogger struct{}

// NewNilLogger returns a logger that drops all messages
func NewNilLogger() *NilLogger {
	return &NilLogger{}
}

func (l *NilLogger) Log(format string, args ...interface{}) {}

func (l *NilLogger) IsEnabled() bool { return false }

func (l *NilLogger) Close() error { return nil }

var _ Logger = (*NilLogger)(nil)

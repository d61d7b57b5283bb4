package logging

import (
	"io"
	"sync"
	"time"
)

// WriterLogger writes log lines synchronously to an io.Writer, typically
// os.Stderr for --verbose runs.
type WriterLogger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterLogger creates a logger writing to w.
func NewWriterLogger(w io.Writer) *WriterLogger {
	return &WriterLogger{out: w}
}

// Log formats and writes a log line.
func (l *WriterLogger) Log(format string, args ...interface{}) {
	msg := formatEntry(time.Now(), format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, msg)
}

// IsEnabled returns true for WriterLogger.
func (l *WriterLogger) IsEnabled() bool {
	return true
}

// Close does not close the underlying writer.
func (l *WriterLogger) Close() error {
	return nil
}

var _ Logger = (*WriterLogger)(nil)

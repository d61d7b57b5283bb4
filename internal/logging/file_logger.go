package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const fileLoggerBuffer = 100

// FileLogger implements the Logger interface, writing logs asynchronously to a file.
type FileLogger struct {
	logChan chan string
	file    *os.File
	waiter  sync.WaitGroup
	mu      sync.Mutex // Protects file handle during close
	once    sync.Once
	dropped atomic.Int64
}

// NewFileLogger creates a new logger that writes to the specified file path.
// It creates the directory if it doesn't exist.
func NewFileLogger(filePath string) (*FileLogger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	logger := &FileLogger{
		logChan: make(chan string, fileLoggerBuffer),
		file:    f,
	}

	logger.waiter.Add(1)
	go logger.writer()

	return logger, nil
}

// writer drains logChan into the file until the channel is closed.
func (l *FileLogger) writer() {
	defer l.waiter.Done()
	for msg := range l.logChan {
		l.mu.Lock()
		if l.file != nil {
			_, _ = l.file.WriteString(msg)
		}
		l.mu.Unlock()
	}
}

// Log formats the message and queues it. When the buffer is full the
// message is dropped and counted.
func (l *FileLogger) Log(format string, args ...interface{}) {
	msg := formatEntry(time.Now(), format, args...)
	select {
	case l.logChan <- msg:
	default:
		l.dropped.Add(1)
	}
}

// IsEnabled returns true for FileLogger.
func (l *FileLogger) IsEnabled() bool {
	return true
}

// Dropped returns how many messages were discarded because the buffer was full.
func (l *FileLogger) Dropped() int64 {
	return l.dropped.Load()
}

// Close stops the writer goroutine, waits for queued messages and closes
// the file. Calling Close more than once is safe.
func (l *FileLogger) Close() error {
	var err error
	l.once.Do(func() {
		close(l.logChan)
		l.waiter.Wait()

		l.mu.Lock()
		defer l.mu.Unlock()
		if n := l.dropped.Load(); n > 0 && l.file != nil {
			_, _ = l.file.WriteString(formatEntry(time.Now(), "%d log messages dropped", n))
		}
		if l.file != nil {
			err = l.file.Close()
			l.file = nil
		}
	})
	return err
}

// Ensure FileLogger implements the Logger interface.
var _ Logger = (*FileLogger)(nil)

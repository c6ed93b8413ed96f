package log

import (
	"fmt"
	"os"
	"sync"
)

// FileLogger appends journal events to a .zlog file. Each event is encoded
// in full before it is written, so an encode failure never leaves a partial
// record in the file.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	written int
	failed  int
}

// NewFileLogger opens path for appending, creating it with mode 0644 if
// needed.
func NewFileLogger(path string) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &FileLogger{file: file}, nil
}

// Log appends the event. Failures are counted rather than returned so the
// journal never interrupts reconciliation. Events logged after Close are
// ignored.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if err == nil {
		_, err = l.file.Write(data)
	}
	if err != nil {
		l.failed++
		return
	}
	l.written++
}

// Written returns how many events were appended.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// WriteErrors returns how many events failed to encode or write.
func (l *FileLogger) WriteErrors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failed
}

// Close closes the file. Calling Close again returns nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

var _ Logger = (*FileLogger)(nil)

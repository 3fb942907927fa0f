package logging

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrorLog appends operational error messages to a plain text file.
// Each entry is written as
//
//	2006-01-02 15:04:05
//	message
//	---
type ErrorLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewErrorLog creates an error log writing to path. An empty path disables writing.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path, now: time.Now}
}

// Path returns the configured file path
func (l *ErrorLog) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// SetPath changes the file path used by later writes
func (l *ErrorLog) SetPath(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = path
}

// Write appends msg and reports whether it reached the file.
// Every message is also emitted as a slog warning.
func (l *ErrorLog) Write(msg string) bool {
	GetLogger().Warn(msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.path == "" {
		return false
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	entry := fmt.Sprintf("%s\n%s\n---\n", l.now().Format("2006-01-02 15:04:05"), msg)
	_, err = f.WriteString(entry)
	return err == nil
}

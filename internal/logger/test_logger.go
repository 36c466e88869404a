package logger

import (
	"fmt"
	"maps"
	"strings"
	"sync"
)

type testLoggerStorage struct {
	mu      sync.RWMutex
	entries []TestLogEntry
}

// TestLogger records entries in memory so tests can assert on them.
// Loggers derived with WithFields share the same storage.
type TestLogger struct {
	storage *testLoggerStorage
	fields  Fields
}

type TestLogEntry struct {
	Level   string
	Message string
	Fields  Fields
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		storage: &testLoggerStorage{},
		fields:  Fields{},
	}
}

func (l *TestLogger) record(level string, args []any) {
	entry := TestLogEntry{
		Level:   level,
		Message: fmt.Sprint(args...),
		Fields:  maps.Clone(l.fields),
	}

	l.storage.mu.Lock()
	l.storage.entries = append(l.storage.entries, entry)
	l.storage.mu.Unlock()
}

func (l *TestLogger) Trace(args ...any) { l.record("trace", args) }
func (l *TestLogger) Debug(args ...any) { l.record("debug", args) }
func (l *TestLogger) Info(args ...any)  { l.record("info", args) }
func (l *TestLogger) Warn(args ...any)  { l.record("warn", args) }
func (l *TestLogger) Error(args ...any) { l.record("error", args) }
func (l *TestLogger) Fatal(args ...any) { l.record("fatal", args) }

func (l *TestLogger) WithFields(fields Fields) Logger {
	merged := maps.Clone(l.fields)
	maps.Copy(merged, fields)
	return &TestLogger{storage: l.storage, fields: merged}
}

func (l *TestLogger) WithField(key string, value any) Logger {
	return l.WithFields(Fields{key: value})
}

func (l *TestLogger) WithError(err error) Logger {
	return l.WithFields(Fields{"error": err})
}

func (l *TestLogger) GetEntries() []TestLogEntry {
	l.storage.mu.RLock()
	defer l.storage.mu.RUnlock()
	return append([]TestLogEntry{}, l.storage.entries...)
}

func (l *TestLogger) Clear() {
	l.storage.mu.Lock()
	defer l.storage.mu.Unlock()
	l.storage.entries = nil
}

func (l *TestLogger) HasEntry(level, message string) bool {
	for _, entry := range l.GetEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// HasEntryContaining is HasEntry with a substring match on the message.
func (l *TestLogger) HasEntryContaining(level, substr string) bool {
	for _, entry := range l.GetEntries() {
		if entry.Level == level && strings.Contains(entry.Message, substr) {
			return true
		}
	}
	return false
}

func (l *TestLogger) CountEntries() int {
	l.storage.mu.RLock()
	defer l.storage.mu.RUnlock()
	return len(l.storage.entries)
}

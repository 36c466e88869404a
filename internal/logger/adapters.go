package logger

import (
	"fmt"
	"strings"
)

// SchedulerAdapter satisfies gocron.Logger.
type SchedulerAdapter struct {
	Logger Logger
}

func (a SchedulerAdapter) Debug(msg string, args ...any) { a.with(args).Debug(msg) }
func (a SchedulerAdapter) Info(msg string, args ...any)  { a.with(args).Info(msg) }
func (a SchedulerAdapter) Warn(msg string, args ...any)  { a.with(args).Warn(msg) }
func (a SchedulerAdapter) Error(msg string, args ...any) { a.with(args).Error(msg) }

// with turns slog-style key/value pairs into fields.
func (a SchedulerAdapter) with(args []any) Logger {
	if len(args) == 0 {
		return a.Logger
	}
	fields := make(Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			fields["extra"] = args[i]
			break
		}
		fields[key] = args[i+1]
	}
	return a.Logger.WithFields(fields)
}

// KVAdapter satisfies badger.Logger. Badger is chatty at info level, so
// info is demoted to debug.
type KVAdapter struct {
	Logger Logger
}

func (a KVAdapter) Errorf(format string, args ...any) {
	a.Logger.Error(trimf(format, args...))
}

func (a KVAdapter) Warningf(format string, args ...any) {
	a.Logger.Warn(trimf(format, args...))
}

func (a KVAdapter) Infof(format string, args ...any) {
	a.Logger.Debug(trimf(format, args...))
}

func (a KVAdapter) Debugf(format string, args ...any) {
	a.Logger.Trace(trimf(format, args...))
}

// MigrationAdapter satisfies goose.Logger.
type MigrationAdapter struct {
	Logger Logger
}

func (a MigrationAdapter) Fatalf(format string, args ...any) {
	a.Logger.Fatal(trimf(format, args...))
}

func (a MigrationAdapter) Printf(format string, args ...any) {
	a.Logger.Info(trimf(format, args...))
}

func trimf(format string, args ...any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

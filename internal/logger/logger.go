package logger

type Fields map[string]any

// Logger is the structured logger every package receives through the
// container. Implementations must be safe for concurrent use.
type Logger interface {
	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)

	WithFields(fields Fields) Logger
	WithField(key string, value any) Logger
	WithError(err error) Logger
}

// Nop discards everything. Handy for CLI paths that print to stdout.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Trace(...any)                   {}
func (nopLogger) Debug(...any)                   {}
func (nopLogger) Info(...any)                    {}
func (nopLogger) Warn(...any)                    {}
func (nopLogger) Error(...any)                   {}
func (nopLogger) Fatal(...any)                   {}
func (n nopLogger) WithFields(Fields) Logger     { return n }
func (n nopLogger) WithField(string, any) Logger { return n }
func (n nopLogger) WithError(error) Logger       { return n }

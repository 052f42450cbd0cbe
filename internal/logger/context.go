package logger

import "context"

type contextKey struct{}

var loggerContextKey = contextKey{}

// WithLogger attaches a Logger to ctx, retrievable with FromContext.
func WithLogger(ctx context.Context, log Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, log)
}

// FromContext returns the Logger previously attached with WithLogger, or a
// NoOpLogger if none was attached. Commands that run outside of the cobra
// command tree (e.g. action Execute/Revert calls invoked from tests) can
// rely on this never being nil.
func FromContext(ctx context.Context) Logger {
	if log, ok := ctx.Value(loggerContextKey).(Logger); ok && log != nil {
		return log
	}

	return NewNoOpLogger()
}

package coro

import "log/slog"

// defaultLogger is nil until SetLogger installs one, which keeps frame
// transition tracing off the hot path unless a caller opts in, mirroring
// the teacher's own
// decision in serde.go to reach for log/slog only where structured
// tracing is genuinely useful, not as a default side effect of every
// operation.
var defaultLogger *slog.Logger

// SetLogger installs the *slog.Logger used by every Task and Generator
// constructed without an explicit WithLogger or WithGeneratorLogger
// option. Passing nil (the
// zero value) disables logging again.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

func logTrace(l *slog.Logger, msg string, args ...any) {
	if l == nil {
		return
	}
	l.Debug(msg, args...)
}

// Package log provides the structured logging wrapper used throughout the
// reconciliation library: a thin layer over zap that keeps call sites free
// of direct zap imports and gives every component a consistent With/Named
// idiom.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log wraps a zap logger with the formatted and sugared helpers the rest of
// the module calls.
type Log struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

// NewNop returns a logger that discards everything, suitable as a default
// for library code that must not log unless a caller opts in.
func NewNop() Log {
	return NewFromZap(zap.NewNop())
}

// NewDevelopment returns a console logger at debug level, mirroring the
// development defaults callers expect from a CLI tool.
func NewDevelopment(name string) Log {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), zap.NewAtomicLevelAt(zapcore.DebugLevel))
	return NewFromZap(zap.New(core).Named(name))
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(l *zap.Logger) Log {
	return Log{logger: l, sugar: l.Sugar()}
}

// Named returns a logger scoped under the given name. The zero Log (no
// caller ever assigned one, the library-default case) stays the zero Log.
func (l Log) Named(name string) Log {
	if l.logger == nil {
		return l
	}
	return NewFromZap(l.logger.Named(fmt.Sprintf("%-13s", name)))
}

// Info prints a formatted info level message. A zero-value Log (the
// library default when no caller opts in) discards it, same as NewNop.
func (l Log) Info(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Debug prints a formatted debug level message.
func (l Log) Debug(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Warning prints a formatted warning level message.
func (l Log) Warning(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error prints a formatted error level message.
func (l Log) Error(format string, args ...any) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a FieldLogger for structured, fields-only logging.
func (l Log) With() FieldLogger {
	return FieldLogger{l: l.logger}
}

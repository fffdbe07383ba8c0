package log

import "go.uber.org/zap"

// Field is a log field holding a name and value.
type Field zap.Field

// LoggableField lets any type contribute a Field, the same pattern the
// FieldLogger methods below accept.
type LoggableField interface {
	Field() Field
}

func (f Field) Field() Field { return f }

func unpack(fields []LoggableField) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Field(f.Field())
	}
	return out
}

// String returns a string field.
func String(name, val string) Field { return Field(zap.String(name, val)) }

// Int returns an int field.
func Int(name string, val int) Field { return Field(zap.Int(name, val)) }

// Uint64 returns a uint64 field.
func Uint64(name string, val uint64) Field { return Field(zap.Uint64(name, val)) }

// Int64 returns an int64 field.
func Int64(name string, val int64) Field { return Field(zap.Int64(name, val)) }

// Bool returns a bool field.
func Bool(name string, val bool) Field { return Field(zap.Bool(name, val)) }

// Err returns an error field.
func Err(err error) Field { return Field(zap.NamedError("error", err)) }

// RecordID is a Uint64 field keyed "record_id".
func RecordID(id uint64) Field { return Uint64("record_id", id) }

// BlockSize is an Int field keyed "m".
func BlockSize(m int) Field { return Int("m", m) }

// Stratum is an Int field keyed "stratum".
func Stratum(level int) Field { return Int("stratum", level) }

// FoldFactor is an Int field keyed "fold_factor".
func FoldFactor(factor int) Field { return Int("fold_factor", factor) }

// FieldLogger logs messages with structured fields only, no formatting.
type FieldLogger struct {
	l *zap.Logger
}

// Info logs msg with fields at info level.
func (fl FieldLogger) Info(msg string, fields ...LoggableField) {
	if fl.l == nil {
		return
	}
	fl.l.Info(msg, unpack(fields)...)
}

// Debug logs msg with fields at debug level.
func (fl FieldLogger) Debug(msg string, fields ...LoggableField) {
	if fl.l == nil {
		return
	}
	fl.l.Debug(msg, unpack(fields)...)
}

// Warning logs msg with fields at warn level.
func (fl FieldLogger) Warning(msg string, fields ...LoggableField) {
	if fl.l == nil {
		return
	}
	fl.l.Warn(msg, unpack(fields)...)
}

// Error logs msg with fields at error level.
func (fl FieldLogger) Error(msg string, fields ...LoggableField) {
	if fl.l == nil {
		return
	}
	fl.l.Error(msg, unpack(fields)...)
}

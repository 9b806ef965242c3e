// Package sdlog is a thin structured-logging facade over
// go.uber.org/zap, matching the field-naming conventions the teacher
// pack's WebSocket client uses (client_id, document_id, seq, error)
// so every layer of this module logs the same shape.
package sdlog

import "go.uber.org/zap"

// Field is an alias so callers don't need a direct zap import for the
// common case of attaching a handful of key/value pairs.
type Field = zap.Field

// String, Int, Uint64, Err and Bool mirror the zap constructors most
// call sites in this module need.
func String(key, val string) Field   { return zap.String(key, val) }
func Int(key string, val int) Field  { return zap.Int(key, val) }
func Uint64(key string, val uint64) Field { return zap.Uint64(key, val) }
func Err(err error) Field            { return zap.Error(err) }
func Bool(key string, val bool) Field { return zap.Bool(key, val) }

// Logger wraps *zap.Logger with the small surface this module uses.
type Logger struct {
	z *zap.Logger
}

// Wrap adapts an existing *zap.Logger.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// NewNop returns a Logger that discards everything, the default for
// Config when no Logger is supplied.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// NewDevelopment returns a Logger suitable for local development
// (human-readable, debug level), matching the teacher's cmd binaries.
func NewDevelopment() *Logger {
	z, err := zap.NewDevelopment()
	if err != nil {
		return NewNop()
	}
	return &Logger{z: z}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	if l == nil {
		return
	}
	l.z.Error(msg, fields...)
}

// With returns a Logger with fields attached to every subsequent call,
// used per-connection and per-document to stamp client_id/document_id.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return NewNop()
	}
	return &Logger{z: l.z.With(fields...)}
}

// internal/logger/pretty.go
package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(ColorCyan + "[DEBUG]" + ColorReset)
	case zapcore.InfoLevel:
		enc.AppendString(ColorGreen + "[INFO]" + ColorReset)
	case zapcore.WarnLevel:
		enc.AppendString(ColorYellow + "[WARN]" + ColorReset)
	case zapcore.ErrorLevel:
		enc.AppendString(ColorRed + "[ERROR]" + ColorReset)
	case zapcore.FatalLevel:
		enc.AppendString(ColorRed + ColorBold + "[FATAL]" + ColorReset)
	default:
		enc.AppendString("[" + level.CapitalString() + "]")
	}
}

// customTimeEncoder formats time in a readable way
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

func levelFor(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// CreatePrettyLogger creates a console logger for humans. Known messages are
// rewritten into one-line summaries; in debug mode fields are kept as-is.
func CreatePrettyLogger(debug bool, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(prettyEncoderConfig()),
		zapcore.AddSync(w),
		levelFor(debug),
	)
	if debug {
		return zap.New(core)
	}
	return zap.New(&FieldFilterCore{core: core})
}

// FormatMessage creates user-friendly log messages
func FormatMessage(msg string, fields []zapcore.Field) string {
	switch {
	case strings.Contains(msg, "Vaults fetched"):
		return fmt.Sprintf("%s📋 Fetched %s vaults%s", ColorBlue, extractField(fields, "count"), ColorReset)

	case strings.Contains(msg, "Snapshot saved"):
		return fmt.Sprintf("%s💾 Snapshot saved (%s vaults)%s", ColorGreen, extractField(fields, "count"), ColorReset)

	case strings.Contains(msg, "Using cached snapshot"):
		return fmt.Sprintf("%s⚠ API unavailable, using snapshot from %s%s", ColorYellow, extractField(fields, "fetched_at"), ColorReset)

	case strings.Contains(msg, "Server listening"):
		return fmt.Sprintf("%s🚀 Listening on %s%s", ColorGreen, extractField(fields, "addr"), ColorReset)

	case strings.Contains(msg, "Export completed"):
		return fmt.Sprintf("%s✅ Exported %s vaults to %s%s", ColorGreen, extractField(fields, "count"), extractField(fields, "path"), ColorReset)

	default:
		if err := extractField(fields, "error"); err != "" {
			return msg + ": " + err
		}
		return msg
	}
}

func extractField(fields []zapcore.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Uint64Type:
			return fmt.Sprintf("%d", field.Integer)
		case zapcore.TimeType:
			if loc, ok := field.Interface.(*time.Location); ok {
				return time.Unix(0, field.Integer).In(loc).Format(time.DateTime)
			}
			return time.Unix(0, field.Integer).Format(time.DateTime)
		case zapcore.ErrorType:
			if err, ok := field.Interface.(error); ok {
				return err.Error()
			}
		}
		if field.Interface != nil {
			return fmt.Sprintf("%v", field.Interface)
		}
		return ""
	}
	return ""
}

// FieldFilterCore wraps a zapcore.Core, folding known fields into the message
// and dropping the rest.
type FieldFilterCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *FieldFilterCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *FieldFilterCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &FieldFilterCore{core: c.core, fields: merged}
}

func (c *FieldFilterCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *FieldFilterCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(c.fields[:len(c.fields):len(c.fields)], fields...)
	entry.Message = FormatMessage(entry.Message, all)
	return c.core.Write(entry, nil)
}

func (c *FieldFilterCore) Sync() error {
	return c.core.Sync()
}

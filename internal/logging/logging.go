// Package logging provides the levelled logger shared by the engine, the
// tokenizer and the configuration loader.
package logging

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	// LevelDebug is for detailed tracing of edits and scans.
	LevelDebug Level = iota
	// LevelInfo is for lifecycle messages.
	LevelInfo
	// LevelWarn is for recoverable problems.
	LevelWarn
	// LevelError is for failed operations.
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name. Unknown names yield LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// sink is shared by a logger and every logger derived from it, so a level
// change on the root applies to all components.
type sink struct {
	mu       sync.Mutex
	level    Level
	output   io.Writer
	disabled bool
	now      func() time.Time
}

// Logger writes one line per message with sorted key=value fields.
type Logger struct {
	sink   *sink
	prefix string
	fields map[string]any
}

// Config configures a root logger.
type Config struct {
	// Level is the minimum level written.
	Level Level
	// Output defaults to os.Stderr.
	Output io.Writer
	// Prefix is written after the level.
	Prefix string
}

// DefaultConfig returns the configuration used by the command line tool.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
		Prefix: "codecore",
	}
}

// New creates a root logger.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{
		sink: &sink{
			level:  cfg.Level,
			output: cfg.Output,
			now:    time.Now,
		},
		prefix: cfg.Prefix,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sink: &sink{disabled: true, output: io.Discard, now: time.Now}}
}

// WithField returns a derived logger carrying key=value.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a derived logger carrying all of fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	return &Logger{sink: l.sink, prefix: l.prefix, fields: merged}
}

// WithComponent sets the component field.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum level for this logger and all derived ones.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// SetOutput replaces the writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return !l.sink.disabled && level >= l.sink.level
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

func (l *Logger) log(level Level, msg string, args ...any) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disabled || level < s.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(s.now().Format("2006-01-02T15:04:05.000"))
	fmt.Fprintf(&b, " [%s] ", level)
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	if len(l.fields) > 0 {
		b.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(l.fields)) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, l.fields[k])
		}
		b.WriteString("}")
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(s.output, b.String())
}

package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log line.
type LogLevel int

const (
	// LogLevelDebug is for operation tracing.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for recoverable problems.
	LogLevelWarn
	// LogLevelError is for failures.
	LogLevelError
)

// String returns the level's log tag.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a level name. Unknown names parse as info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// field is one persistent key=value attached to a logger.
type field struct {
	key   string
	value any
}

// Logger writes leveled, timestamped lines. Message arguments are
// alternating key-value pairs, so a call reads
//
//	log.Info("document saved", "path", path, "blocks", n)
//
// and prints
//
//	2026-01-02T15:04:05.000 [INFO] inkwell: document saved path=notes.iw blocks=12
//
// Persistent fields added with WithField render before the per-call pairs.
// The zero Logger is unusable; construct with NewLogger.
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	out    io.Writer
	prefix string
	fields []field
}

// LoggerConfig configures a Logger.
type LoggerConfig struct {
	// Level is the minimum severity that gets written.
	Level LogLevel
	// Output receives the log lines. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is printed after the level tag.
	Prefix string
}

// DefaultLoggerConfig returns the standard configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Output: os.Stderr,
		Prefix: "inkwell",
	}
}

// NewLogger creates a logger.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{
		level:  cfg.Level,
		out:    cfg.Output,
		prefix: cfg.Prefix,
	}
}

// NullLogger discards everything.
var NullLogger = &Logger{out: io.Discard, level: LogLevelError + 1}

// WithField returns a logger that adds key=value to every line. The receiver
// is unchanged; the derived logger shares the output and level.
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make([]field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	return &Logger{
		level:  l.level,
		out:    l.out,
		prefix: l.prefix,
		fields: append(fields, field{key: key, value: value}),
	}
}

// WithComponent tags every line with a component field.
func (l *Logger) WithComponent(name string) *Logger {
	return l.WithField("component", name)
}

// SetLevel changes the minimum severity.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Debug logs at debug level. The signature matches engine.Logger, so a
// Logger can be passed straight to engine.WithLogger.
func (l *Logger) Debug(msg string, args ...any) { l.log(LogLevelDebug, msg, args) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.log(LogLevelInfo, msg, args) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.log(LogLevelWarn, msg, args) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.log(LogLevelError, msg, args) }

func (l *Logger) log(level LogLevel, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || l.out == nil {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	for _, f := range l.fields {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 != 0 {
		// A dangling argument still gets printed rather than dropped.
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.out, b.String())
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"pdf-extract-api/internal/domain"
)

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ConsoleLogger implements domain.Logger as line-oriented logfmt:
//
//	time=2026-08-31T12:00:00Z level=info msg="Server listening" address=:8080
//
// Values containing spaces are quoted. Writes are serialized so concurrent
// requests do not interleave lines.
type ConsoleLogger struct {
	mu    sync.Mutex
	level Level
	out   io.Writer
	now   func() time.Time
}

// NewLogger creates a logger writing to stdout at the given level.
// Unknown level names fall back to info.
func NewLogger(levelStr string) domain.Logger {
	return NewLoggerWithWriter(levelStr, os.Stdout)
}

// NewLoggerWithWriter creates a logger writing to out. Used by tests to
// capture output.
func NewLoggerWithWriter(levelStr string, out io.Writer) domain.Logger {
	return &ConsoleLogger{
		level: ParseLevel(levelStr),
		out:   out,
		now:   time.Now,
	}
}

// Info logs at the info level
func (l *ConsoleLogger) Info(msg string, fields ...interface{}) {
	if l.level <= LevelInfo {
		l.write(LevelInfo, msg, fields)
	}
}

// Error logs at the error level; err is emitted as an error= field.
func (l *ConsoleLogger) Error(msg string, err error, fields ...interface{}) {
	if l.level <= LevelError {
		l.write(LevelError, msg, append([]interface{}{"error", err}, fields...))
	}
}

// Debug logs at the debug level
func (l *ConsoleLogger) Debug(msg string, fields ...interface{}) {
	if l.level <= LevelDebug {
		l.write(LevelDebug, msg, fields)
	}
}

// Warn logs at the warn level
func (l *ConsoleLogger) Warn(msg string, fields ...interface{}) {
	if l.level <= LevelWarn {
		l.write(LevelWarn, msg, fields)
	}
}

func (l *ConsoleLogger) write(level Level, msg string, fields []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "time=%s level=%s msg=%s",
		l.now().UTC().Format(time.RFC3339), level, quote(msg))

	// Fields come in key/value pairs; a trailing odd key is dropped.
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%s", fields[i], quote(fmt.Sprintf("%v", fields[i+1])))
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}

// quote wraps v in double quotes when it contains spaces, quotes, equals
// signs or is empty, escaping embedded quotes.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, " \"=") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
}

// ParseLevel converts a level name to a Level. Unknown names map to info.
func ParseLevel(levelStr string) Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

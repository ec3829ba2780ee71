// logging.go - Structured Logging Interface for the reactor package
//
// This design allows external integration with logging frameworks like
// zerolog, logrus, etc. while providing a low-overhead built-in
// implementation for basic usage.
//
// Usage:
//
//	rx, _ := reactor.New(64, reactor.WithLogger(reactor.NewDefaultLogger(reactor.LevelInfo)))

package reactor

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message.
type LogLevel int32

const (
	// LevelDebug for detailed diagnostic information.
	LevelDebug LogLevel = iota
	// LevelInfo for general informational messages.
	LevelInfo
	// LevelWarn for warning conditions.
	LevelWarn
	// LevelError for error conditions.
	LevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
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
		return fmt.Sprintf("UNKNOWN(%d)", l)
	}
}

// LogEntry represents a structured log entry.
type LogEntry struct {
	Level     LogLevel
	Category  string // "poll", "fd", "timer", "backend"
	FD        int
	TimerID   uint64
	Message   string
	Err       error
	Timestamp time.Time
}

// Logger is the structured logging interface.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

// DefaultLogger implements Logger using an *os.File, printing one line
// per entry.
type DefaultLogger struct {
	level atomic.Int32
	mu    sync.Mutex
	Out   *os.File
}

// NewDefaultLogger creates a logger writing to os.Stdout with the given
// minimum level.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	l := &DefaultLogger{Out: os.Stdout}
	l.level.Store(int32(level))
	return l
}

// SetLevel dynamically changes the minimum log level.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// IsEnabled checks if the specified level would be logged.
func (l *DefaultLogger) IsEnabled(level LogLevel) bool {
	return level >= LogLevel(l.level.Load())
}

// Log writes a structured log entry.
func (l *DefaultLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.Out, "%s %s [%-8s] %s",
		entry.Timestamp.Format("15:04:05.000"),
		entry.Level,
		entry.Category,
		entry.Message,
	)
	if entry.FD != 0 {
		fmt.Fprintf(l.Out, " fd=%d", entry.FD)
	}
	if entry.TimerID != 0 {
		fmt.Fprintf(l.Out, " timer=%d", entry.TimerID)
	}
	if entry.Err != nil {
		fmt.Fprintf(l.Out, " err=%v\n", entry.Err)
	} else {
		fmt.Fprintln(l.Out)
	}
}

// NoOpLogger discards every entry; it is the default logger so callers
// pay nothing for logging unless they opt in.
type NoOpLogger struct{}

// NewNoOpLogger returns a Logger that discards every entry.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

// Log implements Logger.
func (l *NoOpLogger) Log(entry LogEntry) {}

// IsEnabled implements Logger.
func (l *NoOpLogger) IsEnabled(level LogLevel) bool { return false }

// WriterLogger implements Logger using any io.Writer; convenient for
// capturing log output in tests.
type WriterLogger struct {
	level atomic.Int32
	mu    sync.Mutex
	out   io.Writer
}

// NewWriterLogger creates a logger writing to out with the given
// minimum level.
func NewWriterLogger(level LogLevel, out io.Writer) *WriterLogger {
	l := &WriterLogger{out: out}
	l.level.Store(int32(level))
	return l
}

// IsEnabled checks if the specified level would be logged.
func (l *WriterLogger) IsEnabled(level LogLevel) bool {
	return level >= LogLevel(l.level.Load())
}

// Log writes a structured log entry as plain text.
func (l *WriterLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.out, "[%s] [%-8s] %s", entry.Level, entry.Category, entry.Message)
	if entry.FD != 0 {
		fmt.Fprintf(l.out, " fd=%d", entry.FD)
	}
	if entry.TimerID != 0 {
		fmt.Fprintf(l.out, " timer=%d", entry.TimerID)
	}
	if entry.Err != nil {
		fmt.Fprintf(l.out, " err=%v\n", entry.Err)
	} else {
		fmt.Fprintln(l.out)
	}
}

func logDebug(l Logger, category, message string) {
	if !l.IsEnabled(LevelDebug) {
		return
	}
	l.Log(LogEntry{Level: LevelDebug, Category: category, Message: message})
}

func logWarn(l Logger, category, message string, err error) {
	if !l.IsEnabled(LevelWarn) {
		return
	}
	l.Log(LogEntry{Level: LevelWarn, Category: category, Message: message, Err: err})
}

package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// ParseLogLevel translates a string representation of a log level to its enum. Unrecognized names map to InfoLevel.
func ParseLogLevel(name string) int {
	name = strings.ToUpper(strings.TrimSpace(name))
	for level := TraceLevel; level <= FatalLevel; level++ {
		if LogLevelToString(level) == name {
			return level
		}
	}
	return InfoLevel
}

// Logger writes leveled messages, tagged with their source, to a std log.Logger
type Logger struct {
	source string
	level  int32
	out    *log.Logger
}

// New creates a Logger for the given source, which discards messages below level
func New(source string, level int) *Logger {
	return &Logger{source: source, level: int32(level), out: log.New(os.Stderr, "", log.LstdFlags)}
}

// WithOutput replaces the std log.Logger this Logger writes to
func (l *Logger) WithOutput(out *log.Logger) *Logger {
	return &Logger{source: l.source, level: atomic.LoadInt32(&l.level), out: out}
}

// Named returns a Logger for a sub-component, sharing this Logger's level and output
func (l *Logger) Named(source string) *Logger {
	return &Logger{source: l.source + "." + source, level: atomic.LoadInt32(&l.level), out: l.out}
}

// SetLevel changes the minimum level of messages which are written
func (l *Logger) SetLevel(level int) {
	atomic.StoreInt32(&l.level, int32(level))
}

// Enabled returns true iff messages of the given level are written
func (l *Logger) Enabled(level int) bool {
	return l != nil && int32(level) >= atomic.LoadInt32(&l.level)
}

// Logf writes a message at the given level
func (l *Logger) Logf(level int, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.out.Printf("%s: level [%s]: %s", l.source, LogLevelToString(level), fmt.Sprintf(format, args...))
}

// Debugf writes a message at DebugLevel
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Logf(DebugLevel, format, args...)
}

// Infof writes a message at InfoLevel
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Logf(InfoLevel, format, args...)
}

// Warnf writes a message at WarnLevel
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Logf(WarnLevel, format, args...)
}

// Errorf writes a message at ErrorLevel
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Logf(ErrorLevel, format, args...)
}

// Nop returns a Logger which discards everything
func Nop() *Logger {
	return &Logger{source: "nop", level: FatalLevel + 1, out: log.New(os.Stderr, "", 0)}
}

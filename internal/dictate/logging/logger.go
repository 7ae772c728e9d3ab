// Package logging writes structured key=value logs to daily files.
//
// The CLI runs from a desktop hotkey with no attached terminal, so the file
// log is the only place pipeline details survive.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents a log severity level
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

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// String creates a string field
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Logger handles structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Close() error
}

// Config configures the logger.
type Config struct {
	// LogDir is where log files are stored (default: ~/.vox/logs)
	LogDir string
	// Prefix names the log files: <prefix>-YYYY-MM-DD.log (default: "vox")
	Prefix string
	// RetentionDays is how long old log files are kept (default: 30)
	RetentionDays int
	// MinLevel is the minimum level written (default: LevelInfo)
	MinLevel Level
}

// FileLogger implements Logger with daily file rotation.
type FileLogger struct {
	config      Config
	mu          sync.Mutex
	file        *os.File
	currentDate string
}

// New creates a FileLogger, opening today's file and sweeping out files
// older than the retention window.
func New(config Config) (*FileLogger, error) {
	if config.LogDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		config.LogDir = filepath.Join(homeDir, ".vox", "logs")
	}
	if config.Prefix == "" {
		config.Prefix = "vox"
	}
	if config.RetentionDays <= 0 {
		config.RetentionDays = 30
	}

	if err := os.MkdirAll(config.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logger := &FileLogger{config: config}
	if err := logger.rotateIfNeeded(); err != nil {
		return nil, err
	}

	logger.sweepOldLogs()

	return logger, nil
}

// Debug logs a debug message.
func (l *FileLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, nil, fields...)
}

// Info logs an informational message.
func (l *FileLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, nil, fields...)
}

// Warn logs a degraded-but-continuing condition.
func (l *FileLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, nil, fields...)
}

// Error logs an error message.
func (l *FileLogger) Error(msg string, err error, fields ...Field) {
	l.log(LevelError, msg, err, fields...)
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LogPath returns the path of the current log file.
func (l *FileLogger) LogPath() string {
	today := time.Now().UTC().Format("2006-01-02")
	return filepath.Join(l.config.LogDir, fmt.Sprintf("%s-%s.log", l.config.Prefix, today))
}

func (l *FileLogger) log(level Level, msg string, err error, fields ...Field) {
	if level < l.config.MinLevel {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if rotateErr := l.rotateIfNeeded(); rotateErr != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", rotateErr)
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().UTC().Format(time.RFC3339))
	sb.WriteString(" ")
	sb.WriteString(fmt.Sprintf("%-5s", level.String()))
	sb.WriteString(" ")
	sb.WriteString(msg)

	if err != nil {
		sb.WriteString(" error=")
		sb.WriteString(fmt.Sprintf("%q", err.Error()))
	}

	for _, f := range fields {
		sb.WriteString(" ")
		sb.WriteString(f.Key)
		sb.WriteString("=")
		sb.WriteString(formatValue(f.Value))
	}

	sb.WriteString("\n")

	if l.file != nil {
		l.file.WriteString(sb.String())
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\n") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (l *FileLogger) rotateIfNeeded() error {
	today := time.Now().UTC().Format("2006-01-02")

	if l.currentDate == today && l.file != nil {
		return nil
	}

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	file, err := os.OpenFile(l.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l.file = file
	l.currentDate = today

	return nil
}

// sweepOldLogs deletes log files older than the retention window. A failed
// sweep is not worth failing logger construction over.
func (l *FileLogger) sweepOldLogs() {
	entries, err := os.ReadDir(l.config.LogDir)
	if err != nil {
		return
	}

	prefix := l.config.Prefix + "-"
	cutoff := time.Now().UTC().AddDate(0, 0, -l.config.RetentionDays)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".log") {
			continue
		}

		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".log")
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(l.config.LogDir, name))
		}
	}
}

// Discard is a Logger that drops everything, for tests and disabled logging.
type Discard struct{}

func (Discard) Debug(msg string, fields ...Field)            {}
func (Discard) Info(msg string, fields ...Field)             {}
func (Discard) Warn(msg string, fields ...Field)             {}
func (Discard) Error(msg string, err error, fields ...Field) {}
func (Discard) Close() error                                 { return nil }

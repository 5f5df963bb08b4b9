package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// stderr receives the one-line notice when the log file cannot be opened.
var stderr io.Writer = os.Stderr

type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// NewLogger writes JSON lines to stdout and, when logFile is set, to that file as well.
func NewLogger(level, logFile string) *Logger {
	var logLevel zerolog.Level

	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	var file *os.File
	if logFile != "" {
		f, err := openLogFile(logFile)
		if err != nil {
			fmt.Fprintf(stderr, "logger: file logging disabled, stdout only: %v\n", err)
		} else {
			file = f
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339

	return &Logger{
		zl:   zerolog.New(out).Level(logLevel).With().Timestamp().Logger(),
		file: file,
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// NewNopLogger discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// NewWriterLogger logs to w at debug level.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).Level(zerolog.DebugLevel)}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(l.zl.Debug(), msg, args) }
func (l *Logger) Info(msg string, args ...any) { l.log(l.zl.Info(), msg, args) }
func (l *Logger) Warn(msg string, args ...any) { l.log(l.zl.Warn(), msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(l.zl.Error(), msg, args) }

func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	l.Close()
	os.Exit(1)
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	ctx := l.zl.With()
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			ctx = ctx.Str(key, "!MISSING")
			break
		}
		ctx = ctx.Interface(key, args[i+1])
	}
	return &Logger{zl: ctx.Logger(), file: l.file}
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) log(event *zerolog.Event, msg string, args []any) {
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprint(args[i])
		if i+1 >= len(args) {
			event = event.Str(key, "!MISSING")
			break
		}
		switch v := args[i+1].(type) {
		case error:
			event = event.AnErr(key, v)
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case time.Duration:
			event = event.Dur(key, v)
		default:
			event = event.Interface(key, v)
		}
	}
	event.Msg(msg)
}

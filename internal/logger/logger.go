// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures a logger
type Options struct {
	// File is tee'd with stdout when set
	File string
	// Level is a logrus level name (debug, info, warn, error)
	Level string
	// JSON switches to the JSON formatter
	JSON bool
	// Output replaces stdout as the console writer
	Output io.Writer
}

// Logger wraps logrus with optional file output
type Logger struct {
	file   *os.File
	log    *logrus.Logger
	mu     sync.RWMutex
	closed bool
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
	once          sync.Once
)

// Init initializes the default logger
// If already initialized, returns the existing logger (even if closed)
func Init(opts Options) (*Logger, error) {
	var err error
	once.Do(func() {
		var l *Logger
		l, err = NewLogger(opts)
		if err == nil {
			defaultMu.Lock()
			defaultLogger = l
			defaultMu.Unlock()
		}
	})
	return GetDefault(), err
}

// NewLogger creates a new logger instance
func NewLogger(opts Options) (*Logger, error) {
	var out io.Writer = os.Stdout
	if opts.Output != nil {
		out = opts.Output
	}
	var file *os.File

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(out, f)
	}

	l := New(out, opts.JSON)
	l.file = file

	if opts.Level != "" {
		if err := l.SetLevel(opts.Level); err != nil {
			if file != nil {
				file.Close()
			}
			return nil, err
		}
	}

	return l, nil
}

// New creates a logger writing to w. Used directly by tests.
func New(w io.Writer, json bool) *Logger {
	lr := logrus.New()
	lr.SetOutput(w)
	lr.SetLevel(logrus.InfoLevel)
	if json {
		lr.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		lr.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableQuote:    true,
			PadLevelText:    true,
		})
	}
	return &Logger{log: lr}
}

// GetDefault returns the default logger instance
// If the logger is closed, it creates a new stdout logger
func GetDefault() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultLogger == nil {
		defaultLogger = New(os.Stdout, false)
		return defaultLogger
	}

	defaultLogger.mu.RLock()
	closed := defaultLogger.closed
	defaultLogger.mu.RUnlock()

	if closed {
		defaultLogger = New(os.Stdout, false)
	}
	return defaultLogger
}

// SetLevel parses and applies a level name
func (l *Logger) SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.log.SetLevel(lvl)
	return nil
}

// WithFields returns an entry carrying structured fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.log.WithFields(logrus.Fields(fields))
}

func (l *Logger) logMessage(level logrus.Level, format string, v ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return
	}
	l.log.Logf(level, format, v...)
}

// Printf logs a message at INFO level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.logMessage(logrus.InfoLevel, format, v...)
}

// Infof logs a message at INFO level
func (l *Logger) Infof(format string, v ...interface{}) {
	l.logMessage(logrus.InfoLevel, format, v...)
}

// Println logs a message at INFO level
func (l *Logger) Println(v ...interface{}) {
	l.logMessage(logrus.InfoLevel, "%s", fmt.Sprint(v...))
}

// Errorf logs a message at ERROR level
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.logMessage(logrus.ErrorLevel, format, v...)
}

// Warnf logs a message at WARN level
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.logMessage(logrus.WarnLevel, format, v...)
}

// Debugf logs a message at DEBUG level
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.logMessage(logrus.DebugLevel, format, v...)
}

// Fatalf logs a message at FATAL level and exits
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logMessage(logrus.ErrorLevel, format, v...)
	os.Exit(1)
}

// Close closes the log file. Further messages are dropped.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Package-level convenience functions
func Printf(format string, v ...interface{}) {
	GetDefault().Printf(format, v...)
}

func Infof(format string, v ...interface{}) {
	GetDefault().Infof(format, v...)
}

func Println(v ...interface{}) {
	GetDefault().Println(v...)
}

func Errorf(format string, v ...interface{}) {
	GetDefault().Errorf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	GetDefault().Warnf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	GetDefault().Debugf(format, v...)
}

func Fatalf(format string, v ...interface{}) {
	GetDefault().Fatalf(format, v...)
}

package logging

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

type Logger struct {
	enableInfo        bool
	enableTracing     bool
	mutraceSubsystems sync.Mutex
	traceSubsystems   map[string]bool
	stdoutLogger      *log.Logger
	stderrLogger      *log.Logger
	infoLogger        *log.Logger
	warnLogger        *log.Logger
	debugLogger       *log.Logger
	traceLogger       *log.Logger
}

func NewLogger(stdout io.Writer, stderr io.Writer) *Logger {
	return &Logger{
		enableInfo:      false,
		enableTracing:   false,
		stdoutLogger:    log.NewWithOptions(stdout, log.Options{}),
		stderrLogger:    log.NewWithOptions(stderr, log.Options{}),
		infoLogger:      log.NewWithOptions(stdout, log.Options{Prefix: "info"}),
		warnLogger:      log.NewWithOptions(stderr, log.Options{Prefix: "warn"}),
		debugLogger:     log.NewWithOptions(stdout, log.Options{Prefix: "debug"}),
		traceLogger:     log.NewWithOptions(stdout, log.Options{Prefix: "trace"}),
		traceSubsystems: make(map[string]bool),
	}
}

var defaultLogger *Logger
var defaultOnce sync.Once

func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewLogger(os.Stdout, os.Stderr)
	})
	return defaultLogger
}

func (l *Logger) SetInfo(enabled bool) {
	l.enableInfo = enabled
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.enableInfo {
		l.infoLogger.Printf(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.warnLogger.Printf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.stderrLogger.Printf(format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.debugLogger.Printf(format, args...)
}

func (l *Logger) Trace(subsystem string, format string, args ...interface{}) {
	if l.enableTracing {
		l.mutraceSubsystems.Lock()
		_, exists := l.traceSubsystems[subsystem]
		if !exists {
			_, exists = l.traceSubsystems["all"]
		}
		l.mutraceSubsystems.Unlock()
		if exists {
			l.traceLogger.Printf(subsystem+": "+format, args...)
		}
	}
}

func (l *Logger) EnableTrace(traces string) {
	l.enableTracing = true
	l.mutraceSubsystems.Lock()
	l.traceSubsystems[traces] = true
	l.mutraceSubsystems.Unlock()
}

// Package facade provides the application-side logging API on top of the pipeline
package facade

import (
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/relex/logpipe/base"
	"github.com/relex/logpipe/pipeline"
)

// AsyncLogger is a named logger producing records into a pipeline
//
// Printf-style expansion happens here on the calling goroutine; the pipeline only ever sees
// finished text. Methods never block on I/O and never return errors: a record below the minimum
// level is dropped here, everything else is accepted and eventually written.
//
// Multiple AsyncLoggers may share one pipeline; Stop must be called exactly once on the logger
// owning the pipeline (the one built by Builder).
type AsyncLogger struct {
	name     string
	minLevel base.Level
	pipeline *pipeline.Pipeline
}

// NewAsyncLogger creates a named logger on an existing pipeline
func NewAsyncLogger(name string, minLevel base.Level, pipe *pipeline.Pipeline) *AsyncLogger {
	return &AsyncLogger{
		name:     name,
		minLevel: minLevel,
		pipeline: pipe,
	}
}

// Name returns the logger name
func (alog *AsyncLogger) Name() string {
	return alog.name
}

// Pipeline returns the underlying pipeline, e.g. to attach another named logger
func (alog *AsyncLogger) Pipeline() *pipeline.Pipeline {
	return alog.pipeline
}

// Stop shuts down the underlying pipeline, draining all accepted records; idempotent
func (alog *AsyncLogger) Stop() {
	alog.pipeline.Stop()
}

// Debugf logs at DEBUG level
func (alog *AsyncLogger) Debugf(format string, args ...interface{}) {
	alog.log(base.LevelDebug, format, args...)
}

// Infof logs at INFO level
func (alog *AsyncLogger) Infof(format string, args ...interface{}) {
	alog.log(base.LevelInfo, format, args...)
}

// Warnf logs at WARN level
func (alog *AsyncLogger) Warnf(format string, args ...interface{}) {
	alog.log(base.LevelWarn, format, args...)
}

// Errorf logs at ERROR level
func (alog *AsyncLogger) Errorf(format string, args ...interface{}) {
	alog.log(base.LevelError, format, args...)
}

// Fatalf logs at FATAL level; it does not terminate the process
func (alog *AsyncLogger) Fatalf(format string, args ...interface{}) {
	alog.log(base.LevelFatal, format, args...)
}

func (alog *AsyncLogger) log(level base.Level, format string, args ...interface{}) {
	if level < alog.minLevel {
		return
	}
	file, line := callerLocation()
	alog.pipeline.Push(&base.Record{
		Level:     level,
		Timestamp: time.Now().Unix(),
		ThreadTag: GoroutineTag(),
		Logger:    alog.name,
		File:      file,
		Line:      line,
		Payload:   fmt.Sprintf(format, args...),
	})
}

func callerLocation() (string, int) {
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		return "unknown", 0
	}
	return filepath.Base(file), line
}

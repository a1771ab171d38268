// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements leveled, context-aware logging. Entries carry
// the logging tags attached to the context (see the logtags package) and
// arguments are redaction-marked so that log output can later be made
// safe for reporting.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/opercat/pkg/util/syncutil"
	"github.com/cockroachdb/redact"
)

// Severity identifies the sort of log: info, warning etc.
type Severity int32

// Severity values.
const (
	Severity_UNKNOWN Severity = iota
	Severity_INFO
	Severity_WARNING
	Severity_ERROR
	Severity_FATAL
)

var severityNames = [...]string{"UNKNOWN", "INFO", "WARNING", "ERROR", "FATAL"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int32(s))
	}
	return severityNames[s]
}

// SafeValue implements redact.SafeValue.
func (Severity) SafeValue() {}

// Entry is a single formatted log entry.
type Entry struct {
	Severity Severity
	Time     time.Time
	File     string
	Line     int
	// Tags is the rendered form of the context's logging tags.
	Tags    string
	Message redact.RedactableString
}

// Interceptor is called with every entry emitted while it is registered.
type Interceptor func(Entry)

var logging struct {
	verbosity  int32
	redactable int32

	mu struct {
		syncutil.Mutex
		out          io.Writer
		interceptors map[int]Interceptor
		nextID       int
		exitFn       func(int)
	}
}

func init() {
	logging.mu.out = os.Stderr
	logging.mu.interceptors = make(map[int]Interceptor)
}

// SetOutput redirects log output to w and returns a function that
// restores the previous destination.
func SetOutput(w io.Writer) (restore func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	prev := logging.mu.out
	logging.mu.out = w
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		logging.mu.out = prev
	}
}

// SetVerbosity sets the global verbosity level consulted by V and
// VEventf, and returns the previous level.
func SetVerbosity(level int32) int32 {
	return atomic.SwapInt32(&logging.verbosity, level)
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return atomic.LoadInt32(&logging.verbosity) >= level
}

// SetRedactable controls whether written entries keep their redaction
// markers.
func SetRedactable(redactable bool) {
	var v int32
	if redactable {
		v = 1
	}
	atomic.StoreInt32(&logging.redactable, v)
}

// SetExitFunc allows setting a function that will be called to exit
// the process when a Fatal message is generated. Call with a nil
// function to undo.
func SetExitFunc(f func(int)) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.exitFn = f
}

// Intercept registers fn to receive a copy of every entry. The returned
// function unregisters it.
func Intercept(fn Interceptor) (cleanup func()) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	id := logging.mu.nextID
	logging.mu.nextID++
	logging.mu.interceptors[id] = fn
	return func() {
		logging.mu.Lock()
		defer logging.mu.Unlock()
		delete(logging.mu.interceptors, id)
	}
}

// Infof logs to the INFO log.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_INFO, format, args)
}

// InfofDepth logs to the INFO log, offsetting the caller's stack frame by
// 'depth'.
func InfofDepth(ctx context.Context, depth int, format string, args ...interface{}) {
	logDepth(ctx, depth+1, Severity_INFO, format, args)
}

// Warningf logs to the WARNING and INFO logs.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_WARNING, format, args)
}

// Errorf logs to the ERROR, WARNING, and INFO logs.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_ERROR, format, args)
}

// Fatalf logs to the FATAL log and then exits the process.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, Severity_FATAL, format, args)
	logging.mu.Lock()
	f := logging.mu.exitFn
	logging.mu.Unlock()
	if f != nil {
		f(255)
		return
	}
	os.Exit(255)
}

// VEventf logs to the INFO log when the verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		logDepth(ctx, 1, Severity_INFO, format, args)
	}
}

// VEventfDepth is like VEventf, offsetting the caller's stack frame by
// 'depth'.
func VEventfDepth(ctx context.Context, depth int, level int32, format string, args ...interface{}) {
	if V(level) {
		logDepth(ctx, depth+1, Severity_INFO, format, args)
	}
}

func logDepth(ctx context.Context, depth int, sev Severity, format string, args []interface{}) {
	entry := makeEntry(ctx, sev, depth+1, format, args)
	outputEntry(entry)
}

func makeEntry(
	ctx context.Context, sev Severity, depth int, format string, args []interface{},
) Entry {
	entry := Entry{Severity: sev, Time: time.Now()}
	if _, file, line, ok := runtime.Caller(depth + 1); ok {
		entry.File = filepath.Base(file)
		entry.Line = line
	} else {
		entry.File = "???"
	}
	if tags := logtags.FromContext(ctx); tags != nil {
		entry.Tags = tags.String()
	}
	if len(args) == 0 {
		entry.Message = redact.Sprint(redact.Safe(format))
	} else {
		entry.Message = redact.Sprintf(format, args...)
	}
	return entry
}

func outputEntry(entry Entry) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	for _, fn := range logging.mu.interceptors {
		fn(entry)
	}
	if logging.mu.out == nil {
		return
	}
	_, _ = io.WriteString(logging.mu.out, formatEntry(entry, atomic.LoadInt32(&logging.redactable) == 1))
}

// formatEntry renders the entry in the crdb-v1 single-line layout:
//
//	I241014 10:00:00.000000 file.go:12 [tags] message
func formatEntry(entry Entry, redactable bool) string {
	msg := string(entry.Message)
	if !redactable {
		msg = entry.Message.StripMarkers()
	}
	tags := ""
	if entry.Tags != "" {
		tags = "[" + entry.Tags + "] "
	}
	return fmt.Sprintf("%c%s %s:%d %s%s\n",
		entry.Severity.String()[0],
		entry.Time.UTC().Format("060102 15:04:05.000000"),
		entry.File, entry.Line, tags, msg)
}

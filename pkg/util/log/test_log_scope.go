// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"

	"github.com/cockroachdb/opercat/pkg/util/syncutil"
)

// tShim is the subset of testing.TB used here.
type tShim interface {
	Failed() bool
	Helper()
	Logf(format string, args ...interface{})
}

// TestLogScope buffers log output for the duration of a test. The buffered
// output is flushed to the test log only if the test failed.
type TestLogScope struct {
	mu struct {
		syncutil.Mutex
		buf bytes.Buffer
	}
	restore func()
}

// Scope creates a TestLogScope. The usual pattern is:
//
//	defer log.Scope(t).Close(t)
func Scope(t tShim) *TestLogScope {
	t.Helper()
	sc := &TestLogScope{}
	sc.restore = SetOutput(scopeWriter{sc})
	return sc
}

type scopeWriter struct{ sc *TestLogScope }

func (w scopeWriter) Write(b []byte) (int, error) {
	w.sc.mu.Lock()
	defer w.sc.mu.Unlock()
	return w.sc.mu.buf.Write(b)
}

// Close restores the previous log destination.
func (sc *TestLogScope) Close(t tShim) {
	t.Helper()
	sc.restore()
	if t.Failed() {
		sc.mu.Lock()
		defer sc.mu.Unlock()
		t.Logf("log output:\n%s", sc.mu.buf.String())
	}
}

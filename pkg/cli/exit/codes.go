// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package exit defines the process exit codes of the opercat binary.
package exit

import "os"

// Code represents an exit code.
type Code struct {
	code int
}

// String implements the fmt.Stringer interface.
func (c Code) String() string { return codeNames[c.code] }

// Errno returns the numeric value of the code.
func (c Code) Errno() int { return c.code }

// WithCode terminates the process with the given code.
func WithCode(c Code) {
	os.Exit(c.code)
}

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// UnspecifiedError (1) indicates the process has terminated with an
// error condition. The specific cause of the error can be found in
// the logging output.
func UnspecifiedError() Code { return Code{1} }

// CommandLineFlagError (4) indicates there was an error in the
// command-line parameters.
func CommandLineFlagError() Code { return Code{4} }

// Codes that are specific to client commands follow. Command-specific
// exit codes are allocated down from 125.

// StatementFailed (125) indicates that 'apply' ran to completion but
// at least one of its statements returned an error.
func StatementFailed() Code { return Code{125} }

var codeNames = map[int]string{
	0:   "success",
	1:   "unspecified error",
	4:   "command-line flag error",
	125: "statement failed",
}

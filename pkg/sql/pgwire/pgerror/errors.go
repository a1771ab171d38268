// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgerror attaches PostgreSQL error codes and severities to
// errors built with github.com/cockroachdb/errors.
package pgerror

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
)

// New creates an error with a code.
func New(code pgcode.Code, msg string) error {
	err := errors.NewWithDepth(1, msg)
	err = WithCandidateCode(err, code)
	return err
}

// Newf creates an Error with a format string.
func Newf(code pgcode.Code, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	err = WithCandidateCode(err, code)
	return err
}

// NewWithDepthf creates an error with a pg code and extracts the context
// information at the specified depth level.
func NewWithDepthf(depth int, code pgcode.Code, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1+depth, format, args...)
	err = WithCandidateCode(err, code)
	return err
}

// WithCandidateCode decorates the error with a candidate postgres
// error code. It is called "candidate" because the code is only used
// by GetPGCode() below conditionally.
// The code is considered PII-free and is thus reportable.
func WithCandidateCode(err error, code pgcode.Code) error {
	if err == nil {
		return nil
	}
	return &withCandidateCode{cause: err, code: code.String()}
}

// HasCandidateCode returns true iff there's a candidate code in the error's
// chain.
func HasCandidateCode(err error) bool {
	return errors.HasType(err, (*withCandidateCode)(nil))
}

// GetPGCode retrieves the error code for an error. When several codes are
// present in the chain, the innermost one wins. Assertion failures always
// report Internal.
func GetPGCode(err error) pgcode.Code {
	if err == nil {
		return pgcode.SuccessfulCompletion
	}
	if errors.HasAssertionFailure(err) {
		return pgcode.Internal
	}
	return getPGCodeInternal(err)
}

func getPGCodeInternal(err error) pgcode.Code {
	code := pgcode.Uncategorized
	if c := errors.UnwrapOnce(err); c != nil {
		code = getPGCodeInternal(c)
	}
	if code == pgcode.Uncategorized {
		if v, ok := err.(*withCandidateCode); ok {
			code = pgcode.MakeCode(v.code)
		}
	}
	return code
}

type withCandidateCode struct {
	cause error
	code  string
}

var _ error = (*withCandidateCode)(nil)
var _ errors.SafeFormatter = (*withCandidateCode)(nil)
var _ fmt.Formatter = (*withCandidateCode)(nil)

func (w *withCandidateCode) Error() string { return w.cause.Error() }
func (w *withCandidateCode) Cause() error  { return w.cause }
func (w *withCandidateCode) Unwrap() error { return w.cause }

func (w *withCandidateCode) Format(s fmt.State, verb rune) { errors.FormatError(w, s, verb) }

func (w *withCandidateCode) SafeFormatError(p errors.Printer) (next error) {
	if p.Detail() {
		p.Printf("candidate pg code: %s", errors.Safe(w.code))
	}
	return w.cause
}

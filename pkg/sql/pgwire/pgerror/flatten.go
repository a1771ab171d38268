// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pgerror

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Error is the flattened, client-facing form of an error.
type Error struct {
	Code     string
	Severity string
	Message  string
	Detail   string
	Hint     string
}

// InternalErrorPrefix is prepended on internal errors.
const InternalErrorPrefix = "internal error: "

// Flatten turns any error into a pgerror with fields populated. As
// the name implies, the details from the chain of causes is projected
// into a single struct. This is useful in at least two places: the
// client-facing output of the command line driver, and tests.
//
// Returns nil if err was nil to start with.
func Flatten(err error) *Error {
	if err == nil {
		return nil
	}
	resErr := &Error{
		Code:     GetPGCode(err).String(),
		Severity: GetSeverity(err),
		Message:  err.Error(),
		Detail:   errors.FlattenDetails(err),
		Hint:     errors.FlattenHints(err),
	}
	if errors.HasAssertionFailure(err) && !strings.HasPrefix(resErr.Message, InternalErrorPrefix) {
		resErr.Message = InternalErrorPrefix + resErr.Message
	}
	return resErr
}

// FullError can be used when the full error, including the code, detail
// and hint, is needed in text form.
func FullError(err error) string {
	pgErr := Flatten(err)
	if pgErr == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(pgErr.Severity)
	sb.WriteString(": ")
	sb.WriteString(pgErr.Message)
	sb.WriteString("\nSQLSTATE: ")
	sb.WriteString(pgErr.Code)
	if pgErr.Detail != "" {
		sb.WriteString("\nDETAIL: ")
		sb.WriteString(pgErr.Detail)
	}
	if pgErr.Hint != "" {
		sb.WriteString("\nHINT: ")
		sb.WriteString(pgErr.Hint)
	}
	return sb.String()
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pgcode defines the PostgreSQL error codes used by the operator
// catalog.
package pgcode

// Code is a wrapper around a string to ensure that pg codes are used in
// different pgerror functions by avoiding accidental string input.
type Code struct {
	code string
}

// MakeCode converts a string into a Code.
func MakeCode(s string) Code {
	return Code{code: s}
}

// String returns the underlying pg code string.
func (c Code) String() string {
	return c.code
}

// SafeValue implements redact.SafeValue.
func (c Code) SafeValue() {}

// PG error codes from:
// http://www.postgresql.org/docs/9.5/static/errcodes-appendix.html.
var (
	// Section: Class 00 - Successful Completion
	SuccessfulCompletion = MakeCode("00000")
	// Section: Class 01 - Warning
	Warning = MakeCode("01000")
	// Section: Class 0A - Feature Not Supported
	FeatureNotSupported = MakeCode("0A000")
	// Section: Class 22 - Data Exception
	InvalidParameterValue = MakeCode("22023")
	// Section: Class 3F - Invalid Schema Name
	InvalidSchemaName = MakeCode("3F000")
	// Section: Class 23 - Integrity Constraint Violation
	UniqueViolation = MakeCode("23505")
	// Section: Class 42 - Syntax Error or Access Rule Violation
	Syntax                    = MakeCode("42601")
	InsufficientPrivilege     = MakeCode("42501")
	InvalidName               = MakeCode("42602")
	WrongObjectType           = MakeCode("42809")
	UndefinedFunction         = MakeCode("42883")
	UndefinedObject           = MakeCode("42704")
	DuplicateObject           = MakeCode("42710")
	DuplicateFunction         = MakeCode("42723")
	AmbiguousFunction         = MakeCode("42725")
	InvalidFunctionDefinition = MakeCode("42P13")
	InvalidObjectDefinition   = MakeCode("42P17")
	// Section: Class XX - Internal Error
	Internal = MakeCode("XX000")

	// Uncategorized is used for errors that flow out to a client
	// when there's no code known yet.
	Uncategorized = MakeCode("XXUUU")
)

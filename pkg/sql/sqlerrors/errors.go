// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package sqlerrors exports errors which can occur in the sql package.
//
// Every constructor attaches a pg code and marks the error with one of
// the kind sentinels below, so that callers can branch on the kind with
// errors.Is without inspecting messages or codes.
package sqlerrors

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/redact"
)

// Error kinds. These are only meant to be used as errors.Mark targets
// and errors.Is references; they are never returned directly.
var (
	ErrMissingRequiredAttribute = errors.New("missing required attribute")
	ErrInvalidArgumentType      = errors.New("invalid argument type")
	ErrPostfixNotSupported      = errors.New("postfix operators not supported")
	ErrNotFound                 = errors.New("object not found")
	ErrAmbiguousOverload        = errors.New("ambiguous overload")
	ErrInvalidSignature         = errors.New("invalid signature")
	ErrPermissionDenied         = errors.New("permission denied")
	ErrNotOwner                 = errors.New("not owner")
	ErrImmutableAttributeChange = errors.New("immutable attribute change")
	ErrUnrecognizedAttribute    = errors.New("unrecognized attribute")
	ErrInvalidObjectDefinition  = errors.New("invalid object definition")
	ErrDuplicateObject          = errors.New("duplicate object")
)

var kinds = []struct {
	name string
	ref  error
}{
	{"MissingRequiredAttribute", ErrMissingRequiredAttribute},
	{"InvalidArgumentType", ErrInvalidArgumentType},
	{"PostfixNotSupported", ErrPostfixNotSupported},
	{"NotFound", ErrNotFound},
	{"AmbiguousOverload", ErrAmbiguousOverload},
	{"InvalidSignature", ErrInvalidSignature},
	{"PermissionDenied", ErrPermissionDenied},
	{"NotOwner", ErrNotOwner},
	{"ImmutableAttributeChange", ErrImmutableAttributeChange},
	{"UnrecognizedAttribute", ErrUnrecognizedAttribute},
	{"InvalidObjectDefinition", ErrInvalidObjectDefinition},
	{"DuplicateObject", ErrDuplicateObject},
}

// KindName returns the name of the kind err is marked with, "Internal"
// for assertion failures, or the empty string when err carries no kind.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	if errors.HasAssertionFailure(err) {
		return "Internal"
	}
	for _, k := range kinds {
		if errors.Is(err, k.ref) {
			return k.name
		}
	}
	return ""
}

func newf(kind error, code pgcode.Code, format string, args ...interface{}) error {
	return errors.Mark(pgerror.NewWithDepthf(2, code, format, args...), kind)
}

// NewMissingRequiredAttributeError is returned when a definition omits
// an attribute that has no default.
func NewMissingRequiredAttributeError(format string, args ...interface{}) error {
	return newf(ErrMissingRequiredAttribute, pgcode.InvalidFunctionDefinition, format, args...)
}

// NewRequiresParameterError is returned when an attribute that needs a
// value was given without one.
func NewRequiresParameterError(attr string) error {
	return newf(ErrMissingRequiredAttribute, pgcode.Syntax,
		"%s requires a parameter", redact.SafeString(attr))
}

// NewInvalidArgumentTypeError is returned when an attribute value has
// the wrong shape or a SETOF type is used as an operator argument.
func NewInvalidArgumentTypeError(code pgcode.Code, format string, args ...interface{}) error {
	return newf(ErrInvalidArgumentType, code, format, args...)
}

// NewPostfixNotSupportedError is returned when only the left argument
// type of an operator is given.
func NewPostfixNotSupportedError() error {
	err := newf(ErrPostfixNotSupported, pgcode.InvalidFunctionDefinition,
		"operator right argument type must be specified")
	return errors.WithDetail(err, "Postfix operators are not supported.")
}

// NewUndefinedSchemaError creates an error for an undefined schema.
func NewUndefinedSchemaError(name string) error {
	return newf(ErrNotFound, pgcode.InvalidSchemaName, "schema %q does not exist", name)
}

// NewNoSchemaSelectedError is returned when an unqualified name is
// created and no schema on the search path exists.
func NewNoSchemaSelectedError() error {
	return errors.WithHint(
		newf(ErrNotFound, pgcode.InvalidSchemaName, "no schema has been selected to create in"),
		"Set the search path to an existing schema, or qualify the name.")
}

// NewUndefinedTypeError creates an error for an undefined type.
func NewUndefinedTypeError(name string) error {
	return newf(ErrNotFound, pgcode.UndefinedObject, "type %q does not exist", name)
}

// NewUndefinedFunctionError creates an error for a function signature
// with no exact match. sig is the rendered name(argtypes).
func NewUndefinedFunctionError(sig string) error {
	return newf(ErrNotFound, pgcode.UndefinedFunction, "function %s does not exist", sig)
}

// NewUndefinedOperatorError creates an error for an operator signature
// with no match.
func NewUndefinedOperatorError(sig string) error {
	return newf(ErrNotFound, pgcode.UndefinedFunction, "operator does not exist: %s", sig)
}

// NewUndefinedOperatorIDError creates an error for an operator id with
// no row.
func NewUndefinedOperatorIDError(id uint32) error {
	return newf(ErrNotFound, pgcode.UndefinedFunction, "operator with OID %d does not exist", id)
}

// NewAmbiguousFunctionError is returned when name resolves to more than
// one acceptable signature.
func NewAmbiguousFunctionError(format string, args ...interface{}) error {
	return newf(ErrAmbiguousOverload, pgcode.AmbiguousFunction, format, args...)
}

// NewInvalidSignatureError is returned when a resolved function has the
// wrong return type for its role.
func NewInvalidSignatureError(format string, args ...interface{}) error {
	return newf(ErrInvalidSignature, pgcode.InvalidObjectDefinition, format, args...)
}

// NewInsufficientPrivilegeError creates an error for a failed
// capability check on the object of the given kind.
func NewInsufficientPrivilegeError(objKind redact.SafeString, name string) error {
	return newf(ErrPermissionDenied, pgcode.InsufficientPrivilege,
		"permission denied for %s %s", objKind, name)
}

// NewMustBeOwnerError creates an error for a failed ownership check.
func NewMustBeOwnerError(objKind redact.SafeString, name string) error {
	return newf(ErrNotOwner, pgcode.InsufficientPrivilege,
		"must be owner of %s %s", objKind, name)
}

// NewImmutableAttributeError is returned when an attribute that can
// only be given at creation is passed to ALTER.
func NewImmutableAttributeError(objKind redact.SafeString, attr string) error {
	return newf(ErrImmutableAttributeChange, pgcode.Syntax,
		"%s attribute %q cannot be changed", objKind, attr)
}

// NewUnrecognizedAttributeError is returned by ALTER for an unknown
// attribute name.
func NewUnrecognizedAttributeError(objKind redact.SafeString, attr string) error {
	return newf(ErrUnrecognizedAttribute, pgcode.Syntax,
		"%s attribute %q not recognized", objKind, attr)
}

// NewInvalidObjectDefinitionError is returned when a combination of
// attributes is not applicable to the object being defined.
func NewInvalidObjectDefinitionError(
	code pgcode.Code, format string, args ...interface{},
) error {
	return newf(ErrInvalidObjectDefinition, code, format, args...)
}

// NewUniqueViolationError is returned by a store when an insert
// collides with an existing key of a unique index.
func NewUniqueViolationError(index redact.SafeString) error {
	return newf(ErrDuplicateObject, pgcode.UniqueViolation,
		"duplicate key value violates unique constraint %q", index)
}

// NewDuplicateOperatorError is returned when an operator with the same
// signature already exists. cause, if non-nil, is attached as a
// secondary error.
func NewDuplicateOperatorError(sig string, cause error) error {
	err := newf(ErrDuplicateObject, pgcode.DuplicateFunction, "operator %s already exists", sig)
	if cause != nil {
		err = errors.WithSecondaryError(err, cause)
	}
	return err
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package sqlerrors

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	testCases := []struct {
		err  error
		kind string
		code pgcode.Code
		msg  string
	}{
		{NewMissingRequiredAttributeError("operator function must be specified"),
			"MissingRequiredAttribute", pgcode.InvalidFunctionDefinition,
			"operator function must be specified"},
		{NewRequiresParameterError("leftarg"),
			"MissingRequiredAttribute", pgcode.Syntax, "leftarg requires a parameter"},
		{NewPostfixNotSupportedError(),
			"PostfixNotSupported", pgcode.InvalidFunctionDefinition,
			"operator right argument type must be specified"},
		{NewUndefinedSchemaError("nope"),
			"NotFound", pgcode.InvalidSchemaName, `schema "nope" does not exist`},
		{NewUndefinedTypeError("nope"),
			"NotFound", pgcode.UndefinedObject, `type "nope" does not exist`},
		{NewUndefinedFunctionError("f(integer)"),
			"NotFound", pgcode.UndefinedFunction, "function f(integer) does not exist"},
		{NewUndefinedOperatorIDError(16384),
			"NotFound", pgcode.UndefinedFunction, "operator with OID 16384 does not exist"},
		{NewAmbiguousFunctionError("join estimator function %s has multiple matches", "j"),
			"AmbiguousOverload", pgcode.AmbiguousFunction,
			"join estimator function j has multiple matches"},
		{NewInvalidSignatureError("restriction estimator function %s must return type %s", "r", "float8"),
			"InvalidSignature", pgcode.InvalidObjectDefinition,
			"restriction estimator function r must return type float8"},
		{NewInsufficientPrivilegeError("schema", "public"),
			"PermissionDenied", pgcode.InsufficientPrivilege, "permission denied for schema public"},
		{NewMustBeOwnerError("operator", "==="),
			"NotOwner", pgcode.InsufficientPrivilege, "must be owner of operator ==="},
		{NewImmutableAttributeError("operator", "function"),
			"ImmutableAttributeChange", pgcode.Syntax, `operator attribute "function" cannot be changed`},
		{NewUnrecognizedAttributeError("operator", "sort1"),
			"UnrecognizedAttribute", pgcode.Syntax, `operator attribute "sort1" not recognized`},
		{NewInvalidObjectDefinitionError(pgcode.InvalidFunctionDefinition, "only binary operators can hash"),
			"InvalidObjectDefinition", pgcode.InvalidFunctionDefinition, "only binary operators can hash"},
		{NewDuplicateOperatorError("===(integer, integer)", NewUniqueViolationError("operator_name_index")),
			"DuplicateObject", pgcode.DuplicateFunction, "operator ===(integer, integer) already exists"},
	}
	for _, tc := range testCases {
		t.Run(tc.msg, func(t *testing.T) {
			require.Equal(t, tc.kind, KindName(tc.err))
			require.Equal(t, tc.code, pgerror.GetPGCode(tc.err))
			require.Equal(t, tc.msg, tc.err.Error())
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := errors.Wrap(NewUndefinedTypeError("t"), "resolving leftarg")
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrDuplicateObject))
	require.Equal(t, pgcode.UndefinedObject, pgerror.GetPGCode(err))

	require.Equal(t, "Internal", KindName(errors.AssertionFailedf("boom")))
	require.Equal(t, "", KindName(errors.New("plain")))
	require.Equal(t, "", KindName(nil))
}

func TestPostfixDetail(t *testing.T) {
	flat := pgerror.Flatten(NewPostfixNotSupportedError())
	require.Equal(t, "Postfix operators are not supported.", flat.Detail)
}

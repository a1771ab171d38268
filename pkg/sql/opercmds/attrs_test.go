// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/stretchr/testify/require"
)

func TestBoolArg(t *testing.T) {
	for _, tc := range []struct {
		in  string
		exp bool
		err bool
	}{
		{in: "hashes", exp: true},
		{in: "hashes=true", exp: true},
		{in: "hashes=FALSE", exp: false},
		{in: "hashes=1", exp: true},
		{in: "hashes=0", exp: false},
		{in: "hashes=on", exp: true},
		{in: "hashes='off'", exp: false},
		{in: "hashes=2", err: true},
		{in: "hashes=s.on", err: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			b, err := boolArg(tree.ParseDefElem(tc.in))
			if tc.err {
				require.True(t, errors.Is(err, sqlerrors.ErrInvalidArgumentType), "%v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.exp, b)
		})
	}
}

func TestNameArgs(t *testing.T) {
	n, err := qualifiedNameArg(tree.ParseDefElem("function='s.f'"))
	require.NoError(t, err)
	require.Equal(t, tree.MakeQualifiedName("s", "f"), *n)

	_, err = qualifiedNameArg(tree.ParseDefElem("function=setof int4"))
	require.EqualError(t, err, "argument of function must be a name")

	n, err = qualifiedNameArg(tree.ParseDefElem("function=true"))
	require.NoError(t, err)
	require.Equal(t, tree.MakeUnqualifiedName("true"), *n)

	_, err = qualifiedNameArg(tree.ParseDefElem("hashes=1"))
	require.EqualError(t, err, "argument of hashes must be a name")

	_, err = qualifiedNameArg(tree.ParseDefElem("function"))
	require.True(t, errors.Is(err, sqlerrors.ErrMissingRequiredAttribute))

	tn, err := typeNameArg(tree.ParseDefElem("leftarg=pg_catalog.int4"))
	require.NoError(t, err)
	require.Equal(t, "pg_catalog.int4", tn.String())

	_, err = typeNameArg(tree.ParseDefElem("leftarg=3"))
	require.EqualError(t, err, "argument of leftarg must be a type name")

	require.True(t, isNoneArg(tree.ParseDefElem("restrict=none")))
	require.True(t, isNoneArg(tree.ParseDefElem("restrict")))
	require.False(t, isNoneArg(tree.ParseDefElem("restrict=s.none")))
}

func TestAttrKinds(t *testing.T) {
	require.Equal(t, attrFunction, lookupAttrKind("procedure"))
	require.Equal(t, attrObsoleteMerges, lookupAttrKind("ltcmp"))
	require.Equal(t, attrUnrecognized, lookupAttrKind("LEFTARG"))
	require.True(t, attrHashes.createOnly())
	require.False(t, attrRestrict.createOnly())
	require.False(t, attrUnrecognized.createOnly())
}

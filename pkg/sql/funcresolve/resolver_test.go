// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package funcresolve

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/funccat"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, sp sessiondata.SearchPath) (*Resolver, *funccat.Catalog) {
	c, err := funccat.NewBuiltinCatalog()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return &Resolver{Schemas: c, Types: c, Functions: c, SearchPath: sp}, c
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	r, _ := newResolver(t, sessiondata.DefaultSearchPath)
	int4s := []oid.Oid{oid.T_int4, oid.T_int4}

	for _, name := range []string{"int4eq", "INT4EQ", "pg_catalog.int4eq"} {
		id, err := r.Resolve(ctx, tree.ParseObjectName(name), int4s, false)
		require.NoError(t, err, name)
		require.Equal(t, oid.Oid(65), id, name)
	}

	ret, err := r.ReturnType(ctx, 65)
	require.NoError(t, err)
	require.Equal(t, oid.T_bool, ret)

	// Arity and types must match exactly; int4 is not promoted to int8.
	_, err = r.Resolve(ctx, tree.MakeUnqualifiedName("int8eq"), int4s, false)
	require.True(t, errors.Is(err, sqlerrors.ErrNotFound))
	require.Equal(t, pgcode.UndefinedFunction, pgerror.GetPGCode(err))
	require.EqualError(t, err, "function int8eq(integer, integer) does not exist")

	_, err = r.Resolve(ctx, tree.MakeUnqualifiedName("int4um"), int4s, false)
	require.EqualError(t, err, "function int4um(integer, integer) does not exist")
	id, err := r.Resolve(ctx, tree.MakeUnqualifiedName("int4um"), []oid.Oid{oid.T_int4}, false)
	require.NoError(t, err)
	require.Equal(t, oid.Oid(212), id)

	id, err = r.Resolve(ctx, tree.MakeUnqualifiedName("int8eq"), int4s, true)
	require.NoError(t, err)
	require.Equal(t, catalog.InvalidOid, id)

	// An unknown schema is reported as such, or resolves nothing.
	_, err = r.Resolve(ctx, tree.MakeQualifiedName("nope", "int4eq"), int4s, false)
	require.True(t, errors.Is(err, sqlerrors.ErrNotFound))
	require.Equal(t, pgcode.InvalidSchemaName, pgerror.GetPGCode(err))
	require.EqualError(t, err, `schema "nope" does not exist`)
	id, err = r.Resolve(ctx, tree.MakeQualifiedName("nope", "int4eq"), int4s, true)
	require.NoError(t, err)
	require.Equal(t, catalog.InvalidOid, id)

	_, err = r.ReturnType(ctx, 999999)
	require.True(t, errors.HasAssertionFailure(err))
}

func TestResolveSearchPath(t *testing.T) {
	ctx := context.Background()
	r, c := newResolver(t, sessiondata.MakeSearchPath([]string{"b", "a", "public"}))
	root := username.RootUserName()
	add := func(schema oid.Oid, ret oid.Oid, params ...oid.Oid) oid.Oid {
		fn, err := c.AddFunction(catalog.FunctionDescriptor{
			SchemaID: schema, Name: "sel", Params: params, ReturnType: ret, Owner: root,
		})
		require.NoError(t, err)
		return fn.ID
	}
	a, err := c.AddSchema(catalog.InvalidOid, "a", root)
	require.NoError(t, err)
	b, err := c.AddSchema(catalog.InvalidOid, "b", root)
	require.NoError(t, err)

	inA := add(a.ID, oid.T_float8, oid.T_int4)
	inB := add(b.ID, oid.T_float8, oid.T_int4)
	onlyA := add(a.ID, oid.T_float8, oid.T_int8)
	inPublic := add(funccat.PublicSchemaID, oid.T_float8, oid.T_text)

	for _, tc := range []struct {
		name string
		args []oid.Oid
		exp  oid.Oid
	}{
		// b comes first on the path.
		{"sel", []oid.Oid{oid.T_int4}, inB},
		{"a.sel", []oid.Oid{oid.T_int4}, inA},
		// The first schema with an exact match wins, not the first with
		// the name.
		{"sel", []oid.Oid{oid.T_int8}, onlyA},
		{"sel", []oid.Oid{oid.T_text}, inPublic},
		{"b.sel", []oid.Oid{oid.T_int8}, catalog.InvalidOid},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, err := r.Resolve(ctx, tree.ParseObjectName(tc.name), tc.args, true)
			require.NoError(t, err)
			require.Equal(t, tc.exp, id)
		})
	}

	// Schemas on the path that do not exist are skipped.
	r.SearchPath = sessiondata.MakeSearchPath([]string{"missing", "a"})
	id, err := r.Resolve(ctx, tree.MakeUnqualifiedName("sel"), []oid.Oid{oid.T_int4}, false)
	require.NoError(t, err)
	require.Equal(t, inA, id)
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package funccat

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func newBuiltins(t *testing.T) *Catalog {
	c, err := NewBuiltinCatalog()
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestResolveType(t *testing.T) {
	ctx := context.Background()
	c := newBuiltins(t)

	for _, name := range []string{"int4", "INTEGER", "int", "pg_catalog.int4"} {
		d, err := c.ResolveType(ctx, tree.ParseTypeName(name), sessiondata.DefaultSearchPath)
		require.NoError(t, err, name)
		require.Equal(t, oid.T_int4, d.ID)
		require.Equal(t, "integer", d.Name)
	}

	_, err := c.ResolveType(ctx, tree.NewTypeName("nope"), sessiondata.DefaultSearchPath)
	require.True(t, errors.Is(err, sqlerrors.ErrNotFound))
	require.EqualError(t, err, `type "nope" does not exist`)

	_, err = c.ResolveType(ctx, tree.NewTypeName("public.int4"), sessiondata.DefaultSearchPath)
	require.EqualError(t, err, `type "public.int4" does not exist`)

	// Types in user schemas are only found through the search path.
	sc, err := c.AddSchema(catalog.InvalidOid, "geo", username.RootUserName())
	require.NoError(t, err)
	box, err := c.AddType(catalog.InvalidOid, sc.ID, "box")
	require.NoError(t, err)
	_, err = c.ResolveType(ctx, tree.NewTypeName("box"), sessiondata.DefaultSearchPath)
	require.Error(t, err)
	d, err := c.ResolveType(ctx, tree.NewTypeName("box"), sessiondata.MakeSearchPath([]string{"geo"}))
	require.NoError(t, err)
	require.Equal(t, box.ID, d.ID)

	_, err = c.AddType(catalog.InvalidOid, sc.ID, "BOX")
	require.Error(t, err)
}

func TestFunctions(t *testing.T) {
	ctx := context.Background()
	c := newBuiltins(t)

	fns, err := c.GetFunctionsByName(ctx, PgCatalogSchemaID, "eqsel")
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Equal(t, RestrictEstimatorParams(), fns[0].Params)
	require.Equal(t, oid.T_float8, fns[0].ReturnType)

	// Adding an overload invalidates the cached overload set.
	legacy, err := c.AddFunction(catalog.FunctionDescriptor{
		SchemaID:   PgCatalogSchemaID,
		Name:       "eqsel",
		Params:     LegacyJoinEstimatorParams(),
		ReturnType: oid.T_float8,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, legacy.ID, FirstUserFunctionID)
	fns, err = c.GetFunctionsByName(ctx, PgCatalogSchemaID, "eqsel")
	require.NoError(t, err)
	require.Len(t, fns, 2)

	_, err = c.AddFunction(catalog.FunctionDescriptor{
		SchemaID:   PgCatalogSchemaID,
		Name:       "eqsel",
		Params:     RestrictEstimatorParams(),
		ReturnType: oid.T_float8,
	})
	require.EqualError(t, err, "function eqsel already exists with same argument types")

	_, err = c.AddFunction(catalog.FunctionDescriptor{
		SchemaID: PgCatalogSchemaID, Name: "bad", Params: []oid.Oid{99999}, ReturnType: oid.T_bool,
	})
	require.True(t, errors.HasAssertionFailure(err))

	f, err := c.GetFunctionByID(ctx, 65)
	require.NoError(t, err)
	require.Equal(t, "int4eq", f.Name)
	f, err = c.GetFunctionByID(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, f)

	var names []string
	require.NoError(t, c.VisitFunctions(PgCatalogSchemaID, func(f *catalog.FunctionDescriptor) error {
		if strings.HasPrefix(f.Name, "int4") {
			names = append(names, f.Name)
		}
		return nil
	}))
	require.Equal(t, []string{
		"int4abs", "int4eq", "int4ge", "int4gt", "int4le", "int4lt", "int4mi", "int4ne", "int4pl", "int4um",
	}, names)
}

func TestFormatSignatures(t *testing.T) {
	ctx := context.Background()
	c := newBuiltins(t)
	require.Equal(t, "eqjoinsel(internal, oid, internal, smallint, internal)",
		catalog.FormatFunctionSignature(ctx, c, "eqjoinsel", JoinEstimatorParams()))
	require.Equal(t, "-(NONE, integer)",
		catalog.FormatOperatorSignature(ctx, c, "-", catalog.InvalidOid, oid.T_int4))
	require.Equal(t, "f(424242)", catalog.FormatFunctionSignature(ctx, c, "f", []oid.Oid{424242}))
}

const testSeed = `
schemas:
  - name: geo
    owner: alice
types:
  - name: geo.box
functions:
  - name: geo.box_eq
    args: [geo.box, geo.box]
    returns: bool
    owner: alice
  - name: secret_sel
    args: [internal, oid, internal, int4]
    returns: float8
    private: true
grants:
  - on: function
    object: public.secret_sel(internal, oid, internal, int4)
    to: bob
    privileges: [execute]
  - on: schema
    object: geo
    to: bob
    privileges: [create]
roles:
  - role: admin
    members: [carol]
`

func TestSeed(t *testing.T) {
	ctx := context.Background()
	c := newBuiltins(t)
	g := privilege.NewGrants()
	require.NoError(t, GrantBuiltinDefaults(g))

	seed, err := LoadSeed(strings.NewReader(testSeed))
	require.NoError(t, err)
	require.NoError(t, seed.Apply(ctx, c, g))

	alice := username.MakeSQLUsernameFromPreNormalizedString("alice")
	bob := username.MakeSQLUsernameFromPreNormalizedString("bob")
	dave := username.MakeSQLUsernameFromPreNormalizedString("dave")

	geo, err := c.GetSchemaByName(ctx, "geo")
	require.NoError(t, err)
	require.Equal(t, alice, geo.Owner)
	require.True(t, g.CanCreateIn(ctx, geo.ID, alice))
	require.True(t, g.CanCreateIn(ctx, geo.ID, bob))
	require.False(t, g.CanCreateIn(ctx, geo.ID, dave))
	require.True(t, g.CanCreateIn(ctx, PublicSchemaID, dave))

	fns, err := c.GetFunctionsByName(ctx, PublicSchemaID, "secret_sel")
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.True(t, g.CanExecute(ctx, fns[0].ID, bob))
	require.False(t, g.CanExecute(ctx, fns[0].ID, dave))
	require.True(t, g.CanExecute(ctx, 65, dave))

	fns, err = c.GetFunctionsByName(ctx, geo.ID, "box_eq")
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Equal(t, oid.T_bool, fns[0].ReturnType)

	require.True(t, g.IsAdmin(username.MakeSQLUsernameFromPreNormalizedString("carol")))

	_, err = LoadSeed(strings.NewReader("bogus: 1\n"))
	require.Error(t, err)
	empty, err := LoadSeed(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, empty.Schemas)
}

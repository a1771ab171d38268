// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package funccat

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/lib/pq/oid"
)

// Ids of the builtin schemas.
const (
	PgCatalogSchemaID oid.Oid = 11
	PublicSchemaID    oid.Oid = 2200
)

type builtinType struct {
	id      oid.Oid
	name    string
	aliases []string
}

var builtinTypes = []builtinType{
	{oid.T_bool, "boolean", []string{"bool"}},
	{oid.T_int2, "smallint", []string{"int2"}},
	{oid.T_int4, "integer", []string{"int4", "int"}},
	{oid.T_int8, "bigint", []string{"int8"}},
	{oid.T_float4, "real", []string{"float4"}},
	{oid.T_float8, "double precision", []string{"float8"}},
	{oid.T_oid, "oid", nil},
	{oid.T_text, "text", nil},
	{oid.T_internal, "internal", nil},
}

var (
	restrictParams = []oid.Oid{oid.T_internal, oid.T_oid, oid.T_internal, oid.T_int4}
	joinParams     = []oid.Oid{oid.T_internal, oid.T_oid, oid.T_internal, oid.T_int2, oid.T_internal}
)

type builtinFunc struct {
	id     oid.Oid
	name   string
	params []oid.Oid
	ret    oid.Oid
}

func binary(t oid.Oid) []oid.Oid { return []oid.Oid{t, t} }

var builtinFuncs = []builtinFunc{
	{60, "booleq", binary(oid.T_bool), oid.T_bool},
	{84, "boolne", binary(oid.T_bool), oid.T_bool},
	{65, "int4eq", binary(oid.T_int4), oid.T_bool},
	{66, "int4lt", binary(oid.T_int4), oid.T_bool},
	{144, "int4ne", binary(oid.T_int4), oid.T_bool},
	{147, "int4gt", binary(oid.T_int4), oid.T_bool},
	{149, "int4le", binary(oid.T_int4), oid.T_bool},
	{150, "int4ge", binary(oid.T_int4), oid.T_bool},
	{467, "int8eq", binary(oid.T_int8), oid.T_bool},
	{468, "int8ne", binary(oid.T_int8), oid.T_bool},
	{67, "texteq", binary(oid.T_text), oid.T_bool},
	{157, "textne", binary(oid.T_text), oid.T_bool},
	{293, "float8eq", binary(oid.T_float8), oid.T_bool},
	{177, "int4pl", binary(oid.T_int4), oid.T_int4},
	{181, "int4mi", binary(oid.T_int4), oid.T_int4},
	{212, "int4um", []oid.Oid{oid.T_int4}, oid.T_int4},
	{1251, "int4abs", []oid.Oid{oid.T_int4}, oid.T_int4},
	{101, "eqsel", restrictParams, oid.T_float8},
	{102, "neqsel", restrictParams, oid.T_float8},
	{103, "scalarltsel", restrictParams, oid.T_float8},
	{104, "scalargtsel", restrictParams, oid.T_float8},
	{105, "eqjoinsel", joinParams, oid.T_float8},
	{106, "neqjoinsel", joinParams, oid.T_float8},
	{107, "scalarltjoinsel", joinParams, oid.T_float8},
	{108, "scalargtjoinsel", joinParams, oid.T_float8},
}

// RestrictEstimatorParams returns the parameter types of a restriction
// selectivity estimator.
func RestrictEstimatorParams() []oid.Oid {
	return append([]oid.Oid(nil), restrictParams...)
}

// JoinEstimatorParams returns the parameter types of the current form
// of a join selectivity estimator.
func JoinEstimatorParams() []oid.Oid {
	return append([]oid.Oid(nil), joinParams...)
}

// LegacyJoinEstimatorParams returns the parameter types of the legacy
// join selectivity estimator, which lacks the trailing join info.
func LegacyJoinEstimatorParams() []oid.Oid {
	return append([]oid.Oid(nil), joinParams[:4]...)
}

// NewBuiltinCatalog returns a catalog holding the pg_catalog and public
// schemas, the builtin scalar and pseudo types, the comparison and
// arithmetic functions used by the builtin operators, and the standard
// selectivity estimators.
func NewBuiltinCatalog() (*Catalog, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}
	root := username.RootUserName()
	if _, err := c.AddSchema(PgCatalogSchemaID, sessiondata.PgCatalogName, root); err != nil {
		return nil, err
	}
	if _, err := c.AddSchema(PublicSchemaID, sessiondata.PublicSchemaName, root); err != nil {
		return nil, err
	}
	for _, t := range builtinTypes {
		if _, err := c.AddType(t.id, PgCatalogSchemaID, t.name, t.aliases...); err != nil {
			return nil, errors.Wrapf(err, "adding builtin type %s", t.name)
		}
	}
	for _, f := range builtinFuncs {
		if _, err := c.AddFunction(catalog.FunctionDescriptor{
			ID:         f.id,
			SchemaID:   PgCatalogSchemaID,
			Name:       f.name,
			Params:     f.params,
			ReturnType: f.ret,
			Owner:      root,
		}); err != nil {
			return nil, errors.Wrapf(err, "adding builtin function %s", f.name)
		}
	}
	return c, nil
}

// GrantBuiltinDefaults gives the public role the default privileges on
// the builtin objects: USAGE on both schemas, CREATE on public, USAGE
// on every builtin type and EXECUTE on every builtin function.
func GrantBuiltinDefaults(g *privilege.Grants) error {
	public := username.PublicRoleName()
	for _, id := range []oid.Oid{PgCatalogSchemaID, PublicSchemaID} {
		if err := g.Grant(privilege.Schema, id, public, privilege.USAGE); err != nil {
			return err
		}
	}
	if err := g.Grant(privilege.Schema, PublicSchemaID, public, privilege.CREATE); err != nil {
		return err
	}
	for _, t := range builtinTypes {
		if err := g.Grant(privilege.Type, t.id, public, privilege.USAGE); err != nil {
			return err
		}
	}
	for _, f := range builtinFuncs {
		if err := g.Grant(privilege.Function, f.id, public, privilege.EXECUTE); err != nil {
			return err
		}
	}
	return nil
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package funcresolve resolves function names and exact argument type
// lists to a single function overload.
package funcresolve

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/lib/pq/oid"
)

// Resolver looks up function overloads by name and exact parameter
// types. It is stateless and does not cache; the function catalog it
// reads from may.
type Resolver struct {
	Schemas    catalog.SchemaResolver
	Types      catalog.TypeResolver
	Functions  catalog.FunctionResolver
	SearchPath sessiondata.SearchPath
}

// Resolve returns the id of the function called name whose parameters
// are exactly argTypes. An unqualified name is looked up in each schema
// of the search path in turn, and the first schema holding a match
// wins.
//
// When no function matches, Resolve fails with an undefined function
// error, or an undefined schema error if name names a schema that does
// not exist. If allowMissing is set it returns InvalidOid and no error
// instead.
func (r *Resolver) Resolve(
	ctx context.Context, name tree.ObjectName, argTypes []oid.Oid, allowMissing bool,
) (oid.Oid, error) {
	fn, err := r.ResolveDescriptor(ctx, name, argTypes, allowMissing)
	if err != nil || fn == nil {
		return catalog.InvalidOid, err
	}
	return fn.ID, nil
}

// ResolveDescriptor is like Resolve but returns the matching overload,
// or nil if allowMissing is set and there is none.
func (r *Resolver) ResolveDescriptor(
	ctx context.Context, name tree.ObjectName, argTypes []oid.Oid, allowMissing bool,
) (*catalog.FunctionDescriptor, error) {
	smallName := strings.ToLower(name.Name)
	var fn *catalog.FunctionDescriptor
	if name.ExplicitSchema() {
		sc, err := r.Schemas.GetSchemaByName(ctx, strings.ToLower(name.Schema))
		if err != nil {
			return nil, err
		}
		if sc == nil {
			if allowMissing {
				return nil, nil
			}
			return nil, sqlerrors.NewUndefinedSchemaError(name.Schema)
		}
		if fn, err = r.lookup(ctx, sc.ID, smallName, argTypes); err != nil {
			return nil, err
		}
	} else {
		iter := r.SearchPath.Iter()
		for alt, ok := iter(); ok && fn == nil; alt, ok = iter() {
			sc, err := r.Schemas.GetSchemaByName(ctx, alt)
			if err != nil {
				return nil, err
			}
			if sc == nil {
				continue
			}
			if fn, err = r.lookup(ctx, sc.ID, smallName, argTypes); err != nil {
				return nil, err
			}
		}
	}
	if fn != nil {
		log.VEventf(ctx, 3, "resolved function %s to %d", name.String(), fn.ID)
		return fn, nil
	}
	if allowMissing {
		return nil, nil
	}
	return nil, sqlerrors.NewUndefinedFunctionError(
		catalog.FormatFunctionSignature(ctx, r.Types, name.String(), argTypes))
}

func (r *Resolver) lookup(
	ctx context.Context, schemaID oid.Oid, name string, argTypes []oid.Oid,
) (*catalog.FunctionDescriptor, error) {
	overloads, err := r.Functions.GetFunctionsByName(ctx, schemaID, name)
	if err != nil {
		return nil, err
	}
	for _, fn := range overloads {
		if fn.MatchesParams(argTypes) {
			return fn, nil
		}
	}
	return nil, nil
}

// ReturnType returns the declared result type of the function with the
// given id. The id must come from a previous resolution, so an unknown
// id is an internal error.
func (r *Resolver) ReturnType(ctx context.Context, id oid.Oid) (oid.Oid, error) {
	fn, err := r.Functions.GetFunctionByID(ctx, id)
	if err != nil {
		return catalog.InvalidOid, err
	}
	if fn == nil {
		return catalog.InvalidOid, errors.AssertionFailedf("function %d disappeared", id)
	}
	return fn.ReturnType, nil
}

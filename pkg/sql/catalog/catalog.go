// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package catalog defines the collaborator interfaces through which the
// operator DDL commands see schemas, types and functions.
package catalog

import (
	"context"

	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/lib/pq/oid"
)

// InvalidOid is the absent object reference.
const InvalidOid = oid.Oid(0)

// Class ids of the system relations that hold the objects referenced by
// operators. They double as ObjectAddress.ClassID values.
const (
	TypeRelationID      oid.Oid = 1247
	ProcRelationID      oid.Oid = 1255
	NamespaceRelationID oid.Oid = 2615
	OperatorRelationID  oid.Oid = 2617
)

// ObjectAddress identifies a catalog object.
type ObjectAddress struct {
	ClassID  oid.Oid
	ObjectID oid.Oid
	SubID    int32
}

// InvalidObjectAddress is returned alongside errors.
var InvalidObjectAddress = ObjectAddress{}

// NameEntry corresponds to one entry in a namespace: an object id, the
// schema it lives in, and its name. Names are not unique within a
// schema for overloadable objects.
type NameEntry interface {
	GetID() oid.Oid
	GetParentSchemaID() oid.Oid
	GetName() string
}

// SchemaDescriptor describes a schema.
type SchemaDescriptor struct {
	ID    oid.Oid
	Name  string
	Owner username.SQLUsername
}

// GetID implements NameEntry.
func (d *SchemaDescriptor) GetID() oid.Oid { return d.ID }

// GetParentSchemaID implements NameEntry. Schemas are not nested.
func (d *SchemaDescriptor) GetParentSchemaID() oid.Oid { return InvalidOid }

// GetName implements NameEntry.
func (d *SchemaDescriptor) GetName() string { return d.Name }

// TypeDescriptor describes a type.
type TypeDescriptor struct {
	ID       oid.Oid
	SchemaID oid.Oid
	// Name is the canonical name, used when rendering signatures.
	Name string
	// Aliases are additional names the type resolves from.
	Aliases []string
}

// GetID implements NameEntry.
func (d *TypeDescriptor) GetID() oid.Oid { return d.ID }

// GetParentSchemaID implements NameEntry.
func (d *TypeDescriptor) GetParentSchemaID() oid.Oid { return d.SchemaID }

// GetName implements NameEntry.
func (d *TypeDescriptor) GetName() string { return d.Name }

// FunctionDescriptor describes one overload of a function.
type FunctionDescriptor struct {
	ID         oid.Oid
	SchemaID   oid.Oid
	Name       string
	Params     []oid.Oid
	ReturnType oid.Oid
	ReturnSet  bool
	Owner      username.SQLUsername
}

// GetID implements NameEntry.
func (d *FunctionDescriptor) GetID() oid.Oid { return d.ID }

// GetParentSchemaID implements NameEntry.
func (d *FunctionDescriptor) GetParentSchemaID() oid.Oid { return d.SchemaID }

// GetName implements NameEntry.
func (d *FunctionDescriptor) GetName() string { return d.Name }

// MatchesParams is true iff the overload takes exactly params.
func (d *FunctionDescriptor) MatchesParams(params []oid.Oid) bool {
	if len(d.Params) != len(params) {
		return false
	}
	for i := range params {
		if d.Params[i] != params[i] {
			return false
		}
	}
	return true
}

// SchemaResolver looks up schemas. Lookups of absent schemas return a
// nil descriptor and a nil error.
type SchemaResolver interface {
	GetSchemaByName(ctx context.Context, name string) (*SchemaDescriptor, error)
	GetSchemaByID(ctx context.Context, id oid.Oid) (*SchemaDescriptor, error)
}

// TypeResolver looks up types.
type TypeResolver interface {
	// ResolveType resolves a type name through the search path. Unknown
	// types fail with a NotFound error.
	ResolveType(
		ctx context.Context, name *tree.TypeName, searchPath sessiondata.SearchPath,
	) (*TypeDescriptor, error)
	// GetTypeByID returns nil for unknown ids.
	GetTypeByID(ctx context.Context, id oid.Oid) (*TypeDescriptor, error)
}

// FunctionResolver looks up functions.
type FunctionResolver interface {
	// GetFunctionsByName returns every overload named name in the schema.
	GetFunctionsByName(
		ctx context.Context, schemaID oid.Oid, name string,
	) ([]*FunctionDescriptor, error)
	// GetFunctionByID returns nil for unknown ids.
	GetFunctionByID(ctx context.Context, id oid.Oid) (*FunctionDescriptor, error)
}

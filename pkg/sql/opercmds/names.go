// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"strings"

	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
)

// creationSchema returns the schema in which an object called name is
// created: the named schema when name is qualified, and otherwise the
// first existing schema on the search path.
func (p *runParams) creationSchema(name tree.ObjectName) (*catalog.SchemaDescriptor, error) {
	if name.ExplicitSchema() {
		sc, err := p.cfg.Schemas.GetSchemaByName(p.ctx, strings.ToLower(name.Schema))
		if err != nil {
			return nil, err
		}
		if sc == nil {
			return nil, sqlerrors.NewUndefinedSchemaError(name.Schema)
		}
		return sc, nil
	}
	iter := p.sd.SearchPath.IterWithoutImplicitPGCatalog()
	for scName, ok := iter(); ok; scName, ok = iter() {
		sc, err := p.cfg.Schemas.GetSchemaByName(p.ctx, scName)
		if err != nil {
			return nil, err
		}
		if sc != nil {
			return sc, nil
		}
	}
	return nil, sqlerrors.NewNoSchemaSelectedError()
}

// resolveArgType resolves an operator argument type. A nil name is the
// missing argument of a prefix operator.
func (p *runParams) resolveArgType(tn *tree.TypeName) (oid.Oid, error) {
	if tn == nil {
		return catalog.InvalidOid, nil
	}
	typ, err := p.cfg.Types.ResolveType(p.ctx, tn, p.sd.SearchPath)
	if err != nil {
		return catalog.InvalidOid, err
	}
	return typ.ID, nil
}

// findOperator looks an operator up by name and argument types. An
// unqualified name is searched for along the search path. It returns
// nil if there is no such operator.
func (p *runParams) findOperator(
	name tree.ObjectName, left, right oid.Oid,
) (*oprdesc.Operator, error) {
	if name.ExplicitSchema() {
		sc, err := p.cfg.Schemas.GetSchemaByName(p.ctx, strings.ToLower(name.Schema))
		if err != nil {
			return nil, err
		}
		if sc == nil {
			return nil, sqlerrors.NewUndefinedSchemaError(name.Schema)
		}
		return p.txn.LookupBySignature(p.ctx, oprdesc.Signature{
			NamespaceID: sc.ID, Name: name.Name, Left: left, Right: right,
		})
	}
	iter := p.sd.SearchPath.Iter()
	for scName, ok := iter(); ok; scName, ok = iter() {
		sc, err := p.cfg.Schemas.GetSchemaByName(p.ctx, scName)
		if err != nil {
			return nil, err
		}
		if sc == nil {
			continue
		}
		op, err := p.txn.LookupBySignature(p.ctx, oprdesc.Signature{
			NamespaceID: sc.ID, Name: name.Name, Left: left, Right: right,
		})
		if err != nil || op != nil {
			return op, err
		}
	}
	return nil, nil
}

// lookupOperator resolves an operator reference, failing if there is
// no such operator.
func (p *runParams) lookupOperator(o *tree.OperatorWithArgs) (*oprdesc.Operator, error) {
	left, err := p.resolveArgType(o.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.resolveArgType(o.Right)
	if err != nil {
		return nil, err
	}
	op, err := p.findOperator(o.Name, left, right)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, sqlerrors.NewUndefinedOperatorError(p.formatSignature(o.Name.String(), left, right))
	}
	return op, nil
}

func (p *runParams) formatSignature(name string, left, right oid.Oid) string {
	return catalog.FormatOperatorSignature(p.ctx, p.cfg.Types, name, left, right)
}

// operatorString renders the qualified name and argument types of op.
func (p *runParams) operatorString(op *oprdesc.Operator) string {
	return p.formatSignature(p.formatNameRef(op.Signature().Ref()), op.Left, op.Right)
}

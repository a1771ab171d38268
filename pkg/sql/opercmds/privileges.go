// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
)

// The capability checks are asked of the Authorizer every time; their
// results are never cached across statements.

func (p *runParams) checkCreate(sc *catalog.SchemaDescriptor) error {
	if !p.cfg.Authorizer.CanCreateIn(p.ctx, sc.ID, p.sd.User) {
		return sqlerrors.NewInsufficientPrivilegeError("schema", sc.Name)
	}
	return nil
}

func (p *runParams) checkUsage(typeID oid.Oid) error {
	if !p.cfg.Authorizer.CanUse(p.ctx, typeID, p.sd.User) {
		return sqlerrors.NewInsufficientPrivilegeError("type", p.typeName(typeID))
	}
	return nil
}

func (p *runParams) checkExecute(fnID oid.Oid, name *tree.ObjectName) error {
	if !p.cfg.Authorizer.CanExecute(p.ctx, fnID, p.sd.User) {
		return sqlerrors.NewInsufficientPrivilegeError("function", name.String())
	}
	return nil
}

func (p *runParams) checkOwnership(op *oprdesc.Operator) error {
	if !p.cfg.Authorizer.HasOwnership(p.ctx, op, p.sd.User) {
		return sqlerrors.NewMustBeOwnerError("operator", op.Name)
	}
	return nil
}

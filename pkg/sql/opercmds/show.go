// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"context"
	"strconv"

	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/lib/pq/oid"
)

// OperatorInfo is an operator row with its references rendered by name,
// in the shape of a pg_operator listing.
type OperatorInfo struct {
	ID         oid.Oid
	Schema     string
	Name       string
	Owner      string
	Left       string
	Right      string
	Result     string
	Function   string
	Commutator string
	Negator    string
	Restrict   string
	Join       string
	Merges     bool
	Hashes     bool
}

// Columns are the column headers matching Row.
var Columns = []string{
	"oid", "schema", "name", "owner", "left", "right", "result", "function",
	"commutator", "negator", "restrict", "join", "merges", "hashes",
}

// Row renders the info as strings, in the order of Columns.
func (i OperatorInfo) Row() []string {
	return []string{
		strconv.FormatUint(uint64(i.ID), 10), i.Schema, i.Name, i.Owner, i.Left, i.Right, i.Result,
		i.Function, i.Commutator, i.Negator, i.Restrict, i.Join,
		strconv.FormatBool(i.Merges), strconv.FormatBool(i.Hashes),
	}
}

// ListOperators returns every operator, ordered by id.
func (e *Executor) ListOperators(ctx context.Context) ([]OperatorInfo, error) {
	var res []OperatorInfo
	err := e.cfg.Store.Txn(ctx, func(ctx context.Context, txn oprstore.Txn) error {
		p := &runParams{ctx: ctx, cfg: &e.cfg, txn: txn}
		return txn.Scan(ctx, func(op *oprdesc.Operator) error {
			res = append(res, p.describe(op))
			return nil
		})
	})
	return res, err
}

func (p *runParams) describe(op *oprdesc.Operator) OperatorInfo {
	info := OperatorInfo{
		ID:         op.ID,
		Name:       op.Name,
		Owner:      op.Owner.Normalized(),
		Left:       p.typeName(op.Left),
		Right:      p.typeName(op.Right),
		Result:     p.typeName(op.Result),
		Function:   p.functionName(op.Func),
		Commutator: p.linkName(op.Commutator, op.PendingCommutator),
		Negator:    p.linkName(op.Negator, op.PendingNegator),
		Restrict:   p.functionName(op.Restrict),
		Join:       p.functionName(op.Join),
		Merges:     op.CanMerge,
		Hashes:     op.CanHash,
	}
	info.Schema = strconv.FormatUint(uint64(op.NamespaceID), 10)
	if sc, err := p.cfg.Schemas.GetSchemaByID(p.ctx, op.NamespaceID); err == nil && sc != nil {
		info.Schema = sc.Name
	}
	return info
}

func (p *runParams) functionName(id oid.Oid) string {
	if id == catalog.InvalidOid {
		return "-"
	}
	fn, err := p.cfg.Functions.GetFunctionByID(p.ctx, id)
	if err != nil || fn == nil {
		return strconv.FormatUint(uint64(id), 10)
	}
	return catalog.FormatFunctionSignature(p.ctx, p.cfg.Types, fn.Name, fn.Params)
}

// linkName renders a link by operator id, or a pending link as
// "name?" to show it is not resolved yet.
func (p *runParams) linkName(id oid.Oid, pending *oprdesc.NameRef) string {
	switch {
	case id != catalog.InvalidOid:
		return strconv.FormatUint(uint64(id), 10)
	case pending != nil:
		return p.formatNameRef(*pending) + "?"
	}
	return "-"
}

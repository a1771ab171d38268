// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"context"

	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/opercat/pkg/util/log/eventpb"
	"github.com/cockroachdb/opercat/pkg/util/timeutil"
	"github.com/lib/pq/oid"
)

// AlterOperator executes ALTER OPERATOR ... SET. Only the restriction
// and join estimators can be changed.
func (e *Executor) AlterOperator(
	ctx context.Context, sd *sessiondata.SessionData, n *tree.AlterOperator,
) (catalog.ObjectAddress, error) {
	var addr catalog.ObjectAddress
	err := e.runInTxn(ctx, sd, "alter-operator", func(p *runParams) (err error) {
		addr, err = p.alterOperator(n)
		return err
	})
	if err != nil {
		logError(ctx, n.StatementTag(), err)
	}
	e.cfg.Metrics.record(alterStmt, 1, err)
	return addr, err
}

func (p *runParams) alterOperator(n *tree.AlterOperator) (catalog.ObjectAddress, error) {
	log.VEventf(p.ctx, 2, "%s", n)
	op, err := p.lookupOperator(&n.Operator)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}

	var restrictName, joinName *tree.ObjectName
	var updateRestrict, updateJoin bool
	var changed []string
	for _, d := range n.Options {
		// Every value but NONE must be a name, whatever the attribute.
		var name *tree.ObjectName
		if !isNoneArg(d) {
			if name, err = qualifiedNameArg(d); err != nil {
				return catalog.InvalidObjectAddress, err
			}
		}
		kind := lookupAttrKind(d.Name)
		switch {
		case kind == attrRestrict:
			restrictName, updateRestrict = name, true
		case kind == attrJoin:
			joinName, updateJoin = name, true
		case kind.createOnly():
			// Give a meaningful error for the attributes only CREATE
			// accepts.
			return catalog.InvalidObjectAddress, sqlerrors.NewImmutableAttributeError("operator", d.Name)
		default:
			return catalog.InvalidObjectAddress, sqlerrors.NewUnrecognizedAttributeError("operator", d.Name)
		}
		changed = append(changed, d.Name)
	}

	if err := p.checkOwnership(op); err != nil {
		return catalog.InvalidObjectAddress, err
	}

	restrict, join, err := p.validateEstimators(restrictName, joinName)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if !op.IsBinary() && join != catalog.InvalidOid {
		return catalog.InvalidObjectAddress, invalidDefinition("only binary operators can have join selectivity")
	}
	if op.Result != oid.T_bool {
		if restrict != catalog.InvalidOid {
			return catalog.InvalidObjectAddress, invalidDefinition("only boolean operators can have restriction selectivity")
		}
		if join != catalog.InvalidOid {
			return catalog.InvalidObjectAddress, invalidDefinition("only boolean operators can have join selectivity")
		}
	}

	var patch oprdesc.Patch
	if updateRestrict {
		patch.Restrict = oprdesc.OidPtr(restrict)
	}
	if updateJoin {
		patch.Join = oprdesc.OidPtr(join)
	}
	if !patch.IsEmpty() {
		if err := p.txn.PatchRow(p.ctx, op.ID, patch); err != nil {
			return catalog.InvalidObjectAddress, err
		}
	}
	if err := p.updateDependencies(op.ID); err != nil {
		return catalog.InvalidObjectAddress, err
	}

	log.StructuredEvent(p.ctx, &eventpb.AlterOperator{
		CommonEventDetails:    eventpb.CommonEventDetails{Timestamp: timeutil.Now().UnixNano()},
		CommonSQLEventDetails: eventpb.CommonSQLEventDetails{User: p.sd.User.Normalized(), DescriptorID: uint32(op.ID)},
		OperatorName:          p.operatorString(op),
		Options:               changed,
	})
	return op.Address(), nil
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgnotice"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/opercat/pkg/util/log/eventpb"
	"github.com/cockroachdb/opercat/pkg/util/timeutil"
	"github.com/lib/pq/oid"
)

// DropOperator executes DROP OPERATOR. All the operators are removed in
// one transaction.
func (e *Executor) DropOperator(
	ctx context.Context, sd *sessiondata.SessionData, n *tree.DropOperator,
) error {
	var removed int
	err := e.runInTxn(ctx, sd, "drop-operator", func(p *runParams) (err error) {
		removed, err = p.dropOperator(n)
		return err
	})
	if err != nil {
		logError(ctx, n.StatementTag(), err)
	}
	e.cfg.Metrics.record(removeStmt, removed, err)
	return err
}

func (p *runParams) dropOperator(n *tree.DropOperator) (int, error) {
	log.VEventf(p.ctx, 2, "%s", n)
	removed := 0
	for i := range n.Operators {
		o := &n.Operators[i]
		op, err := p.lookupOperator(o)
		if err != nil {
			if n.IfExists && errors.Is(err, sqlerrors.ErrNotFound) {
				p.sendNotice(pgnotice.Newf("%s, skipping", errors.Safe(skipMessage(o, err))))
				continue
			}
			return 0, err
		}
		if err := p.checkOwnership(op); err != nil {
			return 0, err
		}
		name := p.operatorString(op)
		if _, err := p.removeOperator(op.ID); err != nil {
			return 0, err
		}
		removed++
		log.StructuredEvent(p.ctx, &eventpb.DropOperator{
			CommonEventDetails:    eventpb.CommonEventDetails{Timestamp: timeutil.Now().UnixNano()},
			CommonSQLEventDetails: eventpb.CommonSQLEventDetails{User: p.sd.User.Normalized(), DescriptorID: uint32(op.ID)},
			OperatorName:          name,
		})
	}
	return removed, nil
}

// skipMessage words the notice for an IF EXISTS miss. A missing
// argument type or schema is reported as such.
func skipMessage(o *tree.OperatorWithArgs, err error) string {
	if pgerror.GetPGCode(err) == pgcode.UndefinedFunction {
		return "operator " + o.String() + " does not exist"
	}
	return err.Error()
}

// RemoveOperatorByID removes the operator with the given id. It is the
// entry point for dependency-driven removal, which has done its own
// privilege checks.
func (e *Executor) RemoveOperatorByID(ctx context.Context, sd *sessiondata.SessionData, id oid.Oid) error {
	err := e.runInTxn(ctx, sd, "remove-operator", func(p *runParams) error {
		_, err := p.removeOperator(id)
		return err
	})
	if err != nil {
		logError(ctx, "remove operator", err)
	}
	e.cfg.Metrics.record(removeStmt, 1, err)
	return err
}

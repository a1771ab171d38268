// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/opercat/pkg/util/log/eventpb"
	"github.com/cockroachdb/opercat/pkg/util/timeutil"
	"github.com/lib/pq/oid"
)

// createRequest is a fully resolved operator definition.
type createRequest struct {
	name   string
	schema *catalog.SchemaDescriptor
	left   oid.Oid
	right  oid.Oid
	result oid.Oid
	// function is the implementing function; its result type is result.
	function oid.Oid
	// commutator and negator are still names: they are resolved against
	// the operator table when the row is linked.
	commutator *tree.ObjectName
	negator    *tree.ObjectName
	restrict   oid.Oid
	join       oid.Oid
	canMerge   bool
	canHash    bool
}

func (r *createRequest) isBinary() bool { return r.left != catalog.InvalidOid }

func invalidDefinition(msg string) error {
	return sqlerrors.NewInvalidObjectDefinitionError(pgcode.InvalidFunctionDefinition, "%s", errors.Safe(msg))
}

// checkApplicability rejects attributes that make no sense for the
// shape of the operator.
func (r *createRequest) checkApplicability() error {
	if !r.isBinary() {
		switch {
		case r.commutator != nil:
			return invalidDefinition("only binary operators can have commutators")
		case r.join != catalog.InvalidOid:
			return invalidDefinition("only binary operators can have join selectivity")
		case r.canMerge:
			return invalidDefinition("only binary operators can merge join")
		case r.canHash:
			return invalidDefinition("only binary operators can hash")
		}
	}
	if r.result != oid.T_bool {
		switch {
		case r.negator != nil:
			return invalidDefinition("only boolean operators can have negators")
		case r.restrict != catalog.InvalidOid:
			return invalidDefinition("only boolean operators can have restriction selectivity")
		case r.join != catalog.InvalidOid:
			return invalidDefinition("only boolean operators can have join selectivity")
		case r.canMerge:
			return invalidDefinition("only boolean operators can merge join")
		case r.canHash:
			return invalidDefinition("only boolean operators can hash")
		}
	}
	return nil
}

// createOperator writes a new operator row, records what it depends
// on, and links it to its commutator and negator.
func (p *runParams) createOperator(r createRequest) (catalog.ObjectAddress, error) {
	if err := r.checkApplicability(); err != nil {
		return catalog.InvalidObjectAddress, err
	}
	op := &oprdesc.Operator{
		Name:        r.name,
		NamespaceID: r.schema.ID,
		Owner:       p.sd.User,
		Left:        r.left,
		Right:       r.right,
		Result:      r.result,
		Func:        r.function,
		Restrict:    r.restrict,
		Join:        r.join,
		CanMerge:    r.canMerge,
		CanHash:     r.canHash,
	}
	links, err := p.resolveLinks(op, r.commutator, r.negator)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	op.PendingCommutator = links.pendingCommutator
	op.PendingNegator = links.pendingNegator

	// Uniqueness is left to the store's signature index so that two
	// concurrent definitions cannot both succeed.
	id, err := p.txn.InsertRow(p.ctx, op)
	if err != nil {
		if errors.Is(err, sqlerrors.ErrDuplicateObject) {
			err = sqlerrors.NewDuplicateOperatorError(p.formatSignature(r.name, r.left, r.right), err)
		}
		return catalog.InvalidObjectAddress, err
	}
	op.ID = id

	if err := p.txn.SetDependencies(p.ctx, id, op.Dependencies()); err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if err := p.makeOperatorLinks(op, links); err != nil {
		return catalog.InvalidObjectAddress, err
	}

	log.StructuredEvent(p.ctx, &eventpb.CreateOperator{
		CommonEventDetails:    eventpb.CommonEventDetails{Timestamp: timeutil.Now().UnixNano()},
		CommonSQLEventDetails: eventpb.CommonSQLEventDetails{User: p.sd.User.Normalized(), DescriptorID: uint32(id)},
		OperatorName:          p.operatorString(op),
	})
	return op.Address(), nil
}

// updateDependencies rewrites the dependency edges of the operator
// from its current row.
func (p *runParams) updateDependencies(id oid.Oid) error {
	op, err := p.mustFetch(id)
	if err != nil {
		return err
	}
	return p.txn.SetDependencies(p.ctx, id, op.Dependencies())
}

// mustFetch fetches a row known to exist.
func (p *runParams) mustFetch(id oid.Oid) (*oprdesc.Operator, error) {
	op, err := p.txn.FetchForUpdate(p.ctx, id)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, errors.AssertionFailedf("cache lookup failed for operator %d", id)
	}
	return op, nil
}

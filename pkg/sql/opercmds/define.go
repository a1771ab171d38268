// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"context"

	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgnotice"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/lib/pq/oid"
)

// operatorDefinition is the attribute list of CREATE OPERATOR sorted
// into fields.
type operatorDefinition struct {
	left, right       *tree.TypeName
	function          *tree.ObjectName
	commutator        *tree.ObjectName
	negator           *tree.ObjectName
	restrict, join    *tree.ObjectName
	canMerge, canHash bool
}

// DefineOperator executes CREATE OPERATOR and returns the address of
// the new operator.
func (e *Executor) DefineOperator(
	ctx context.Context, sd *sessiondata.SessionData, n *tree.CreateOperator,
) (catalog.ObjectAddress, error) {
	var addr catalog.ObjectAddress
	err := e.runInTxn(ctx, sd, "define-operator", func(p *runParams) (err error) {
		addr, err = p.defineOperator(n)
		return err
	})
	if err != nil {
		logError(ctx, n.StatementTag(), err)
	}
	e.cfg.Metrics.record(defineStmt, 1, err)
	return addr, err
}

func (p *runParams) defineOperator(n *tree.CreateOperator) (catalog.ObjectAddress, error) {
	log.VEventf(p.ctx, 2, "%s", n)
	sc, err := p.creationSchema(n.Name)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if err := p.checkCreate(sc); err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if err := validateOperatorName(n.Name.Name); err != nil {
		return catalog.InvalidObjectAddress, err
	}

	def, err := p.readDefinition(n.Definition)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if def.function == nil {
		return catalog.InvalidObjectAddress, sqlerrors.NewMissingRequiredAttributeError(
			"operator function must be specified")
	}

	left, err := p.resolveArgType(def.left)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	right, err := p.resolveArgType(def.right)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	// With only the right argument missing the user is likely trying to
	// create a postfix operator; with both missing they most likely
	// forgot the arguments.
	if left == catalog.InvalidOid && right == catalog.InvalidOid {
		return catalog.InvalidObjectAddress, sqlerrors.NewMissingRequiredAttributeError(
			"operator argument types must be specified")
	}
	if right == catalog.InvalidOid {
		return catalog.InvalidObjectAddress, sqlerrors.NewPostfixNotSupportedError()
	}
	for _, t := range []oid.Oid{left, right} {
		if t == catalog.InvalidOid {
			continue
		}
		if err := p.checkUsage(t); err != nil {
			return catalog.InvalidObjectAddress, err
		}
	}

	argTypes := []oid.Oid{right}
	if left != catalog.InvalidOid {
		argTypes = []oid.Oid{left, right}
	}
	fn, err := p.resolver.ResolveDescriptor(p.ctx, *def.function, argTypes, false)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if err := p.checkExecute(fn.ID, def.function); err != nil {
		return catalog.InvalidObjectAddress, err
	}
	if err := p.checkUsage(fn.ReturnType); err != nil {
		return catalog.InvalidObjectAddress, err
	}

	restrict, join, err := p.validateEstimators(def.restrict, def.join)
	if err != nil {
		return catalog.InvalidObjectAddress, err
	}

	return p.createOperator(createRequest{
		name:       n.Name.Name,
		schema:     sc,
		left:       left,
		right:      right,
		result:     fn.ReturnType,
		function:   fn.ID,
		commutator: def.commutator,
		negator:    def.negator,
		restrict:   restrict,
		join:       join,
		canMerge:   def.canMerge,
		canHash:    def.canHash,
	})
}

// readDefinition sorts the attribute list. Unknown attributes are
// reported as a warning and otherwise ignored, as they always have
// been.
func (p *runParams) readDefinition(list tree.DefList) (operatorDefinition, error) {
	var def operatorDefinition
	var err error
	for _, d := range list {
		switch lookupAttrKind(d.Name) {
		case attrLeftArg:
			if def.left, err = setofFreeTypeNameArg(d); err != nil {
				return def, err
			}
		case attrRightArg:
			if def.right, err = setofFreeTypeNameArg(d); err != nil {
				return def, err
			}
		case attrFunction:
			def.function, err = qualifiedNameArg(d)
		case attrCommutator:
			def.commutator, err = qualifiedNameArg(d)
		case attrNegator:
			def.negator, err = qualifiedNameArg(d)
		case attrRestrict:
			def.restrict, err = qualifiedNameArg(d)
		case attrJoin:
			def.join, err = qualifiedNameArg(d)
		case attrHashes:
			def.canHash, err = boolArg(d)
		case attrMerges:
			def.canMerge, err = boolArg(d)
		case attrObsoleteMerges:
			def.canMerge = true
		case attrUnrecognized:
			p.warnUnrecognizedAttr(d.Name)
		}
		if err != nil {
			return def, err
		}
	}
	return def, nil
}

func setofFreeTypeNameArg(d tree.DefElem) (*tree.TypeName, error) {
	tn, err := typeNameArg(d)
	if err != nil {
		return nil, err
	}
	if tn.SetOf {
		return nil, sqlerrors.NewInvalidArgumentTypeError(pgcode.InvalidFunctionDefinition,
			"SETOF type not allowed for operator argument")
	}
	return tn, nil
}

func (p *runParams) warnUnrecognizedAttr(name string) {
	log.Warningf(p.ctx, "operator attribute %q not recognized", name)
	p.sendNotice(pgnotice.NewWithSeverityf("WARNING", pgcode.Syntax,
		"operator attribute %q not recognized", name))
}

func validateOperatorName(name string) error {
	if !tree.ValidOperatorName(name) {
		return sqlerrors.NewInvalidObjectDefinitionError(pgcode.InvalidName,
			"%q is not a valid operator name", name)
	}
	return nil
}

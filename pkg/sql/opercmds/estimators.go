// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds

import (
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/lib/pq/oid"
)

// Estimator signatures. A restriction estimator is called as
// (planner info, operator oid, argument list, varRelid). A join
// estimator additionally gets the join type and join info; the older
// four-argument form with an int2 join type and no join info is still
// accepted.
var (
	restrictEstimatorParams   = []oid.Oid{oid.T_internal, oid.T_oid, oid.T_internal, oid.T_int4}
	joinEstimatorParams       = []oid.Oid{oid.T_internal, oid.T_oid, oid.T_internal, oid.T_int2, oid.T_internal}
	legacyJoinEstimatorParams = joinEstimatorParams[:4]
)

// selectivityType is the result type every estimator must have.
const selectivityType = oid.T_float8

// validateRestrictionEstimator resolves the restriction estimator named
// name, checks its result type and that the user may execute it.
func (p *runParams) validateRestrictionEstimator(name *tree.ObjectName) (oid.Oid, error) {
	fn, err := p.resolver.ResolveDescriptor(p.ctx, *name, restrictEstimatorParams, false)
	if err != nil {
		return catalog.InvalidOid, err
	}
	if fn.ReturnType != selectivityType {
		return catalog.InvalidOid, sqlerrors.NewInvalidSignatureError(
			"restriction estimator function %s must return type %s", name.String(), "float8")
	}
	if err := p.checkExecute(fn.ID, name); err != nil {
		return catalog.InvalidOid, err
	}
	return fn.ID, nil
}

// validateJoinEstimator is like validateRestrictionEstimator for join
// estimators. A name matching both signatures is ambiguous; a name
// matching neither is reported against the current signature.
func (p *runParams) validateJoinEstimator(name *tree.ObjectName) (oid.Oid, error) {
	fn, err := p.resolver.ResolveDescriptor(p.ctx, *name, joinEstimatorParams, true)
	if err != nil {
		return catalog.InvalidOid, err
	}
	legacy, err := p.resolver.ResolveDescriptor(p.ctx, *name, legacyJoinEstimatorParams, true)
	if err != nil {
		return catalog.InvalidOid, err
	}
	switch {
	case fn != nil && legacy != nil:
		return catalog.InvalidOid, sqlerrors.NewAmbiguousFunctionError(
			"join estimator function %s has multiple matches", name.String())
	case fn == nil && legacy != nil:
		fn = legacy
	case fn == nil:
		if fn, err = p.resolver.ResolveDescriptor(p.ctx, *name, joinEstimatorParams, false); err != nil {
			return catalog.InvalidOid, err
		}
	}
	if fn.ReturnType != selectivityType {
		return catalog.InvalidOid, sqlerrors.NewInvalidSignatureError(
			"join estimator function %s must return type %s", name.String(), "float8")
	}
	if err := p.checkExecute(fn.ID, name); err != nil {
		return catalog.InvalidOid, err
	}
	return fn.ID, nil
}

// validateEstimators resolves whichever of the two estimators was
// named. An absent name yields InvalidOid.
func (p *runParams) validateEstimators(
	restrictName, joinName *tree.ObjectName,
) (restrict, join oid.Oid, err error) {
	if restrictName != nil {
		if restrict, err = p.validateRestrictionEstimator(restrictName); err != nil {
			return catalog.InvalidOid, catalog.InvalidOid, err
		}
	}
	if joinName != nil {
		if join, err = p.validateJoinEstimator(joinName); err != nil {
			return catalog.InvalidOid, catalog.InvalidOid, err
		}
	}
	return restrict, join, nil
}

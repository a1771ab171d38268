// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package oprdesc

import "github.com/lib/pq/oid"

// Patch is a partial update of an operator row. Nil fields are left
// untouched. Setting a field to InvalidOid clears it.
type Patch struct {
	Restrict   *oid.Oid
	Join       *oid.Oid
	Commutator *oid.Oid
	Negator    *oid.Oid

	ClearPendingCommutator bool
	ClearPendingNegator    bool
}

// OidPtr returns a pointer to id, for building patches.
func OidPtr(id oid.Oid) *oid.Oid { return &id }

// IsEmpty is true iff applying the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Restrict == nil && p.Join == nil && p.Commutator == nil && p.Negator == nil &&
		!p.ClearPendingCommutator && !p.ClearPendingNegator
}

// Apply applies the patch to op in place.
func (p Patch) Apply(op *Operator) {
	if p.Restrict != nil {
		op.Restrict = *p.Restrict
	}
	if p.Join != nil {
		op.Join = *p.Join
	}
	if p.Commutator != nil {
		op.Commutator = *p.Commutator
	}
	if p.Negator != nil {
		op.Negator = *p.Negator
	}
	if p.ClearPendingCommutator {
		op.PendingCommutator = nil
	}
	if p.ClearPendingNegator {
		op.PendingNegator = nil
	}
}

// Merge returns p with the fields of o layered on top.
func (p Patch) Merge(o Patch) Patch {
	if o.Restrict != nil {
		p.Restrict = o.Restrict
	}
	if o.Join != nil {
		p.Join = o.Join
	}
	if o.Commutator != nil {
		p.Commutator = o.Commutator
	}
	if o.Negator != nil {
		p.Negator = o.Negator
	}
	p.ClearPendingCommutator = p.ClearPendingCommutator || o.ClearPendingCommutator
	p.ClearPendingNegator = p.ClearPendingNegator || o.ClearPendingNegator
	return p
}

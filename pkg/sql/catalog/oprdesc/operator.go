// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package oprdesc defines the operator catalog row and the invariants
// every stored row satisfies.
package oprdesc

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/lib/pq/oid"
)

// FirstOperatorID is the first id allocated to a user-defined operator.
const FirstOperatorID oid.Oid = 16384

// NameRef is an unresolved reference to another operator, recorded
// when a commutator or negator is named before it exists. The argument
// types of the referenced operator are implied by the kind of link.
type NameRef struct {
	NamespaceID oid.Oid
	Name        string
}

func (r NameRef) String() string {
	return fmt.Sprintf("%d.%s", r.NamespaceID, r.Name)
}

// Operator is one row of the operator relation.
type Operator struct {
	ID          oid.Oid
	Name        string
	NamespaceID oid.Oid
	Owner       username.SQLUsername
	// Left is InvalidOid for a prefix operator.
	Left   oid.Oid
	Right  oid.Oid
	Result oid.Oid
	Func   oid.Oid

	Commutator oid.Oid
	Negator    oid.Oid
	Restrict   oid.Oid
	Join       oid.Oid
	CanMerge   bool
	CanHash    bool

	// PendingCommutator and PendingNegator hold links whose target did
	// not exist when this row was written. They are completed when the
	// target is created.
	PendingCommutator *NameRef
	PendingNegator    *NameRef
}

var _ privilege.OwnedObject = (*Operator)(nil)

// GetID implements privilege.OwnedObject.
func (op *Operator) GetID() oid.Oid { return op.ID }

// GetOwner implements privilege.OwnedObject.
func (op *Operator) GetOwner() username.SQLUsername { return op.Owner }

// IsBinary is true iff the operator takes two arguments.
func (op *Operator) IsBinary() bool { return op.Left != catalog.InvalidOid }

// Signature returns the uniqueness key of the row.
func (op *Operator) Signature() Signature {
	return Signature{NamespaceID: op.NamespaceID, Name: op.Name, Left: op.Left, Right: op.Right}
}

// Address returns the object address of the row.
func (op *Operator) Address() catalog.ObjectAddress {
	return catalog.ObjectAddress{ClassID: catalog.OperatorRelationID, ObjectID: op.ID}
}

// Clone returns a deep copy of the row.
func (op *Operator) Clone() *Operator {
	c := *op
	if op.PendingCommutator != nil {
		r := *op.PendingCommutator
		c.PendingCommutator = &r
	}
	if op.PendingNegator != nil {
		r := *op.PendingNegator
		c.PendingNegator = &r
	}
	return &c
}

// Signature identifies an operator: operators are overloaded by their
// argument types, so the name alone is not unique in a namespace.
type Signature struct {
	NamespaceID oid.Oid
	Name        string
	Left        oid.Oid
	Right       oid.Oid
}

// Commuted returns the signature a commutator of s has.
func (s Signature) Commuted() Signature {
	s.Left, s.Right = s.Right, s.Left
	return s
}

// Ref returns the name part of s.
func (s Signature) Ref() NameRef {
	return NameRef{NamespaceID: s.NamespaceID, Name: s.Name}
}

func (s Signature) String() string {
	return fmt.Sprintf("%d.%s(%d, %d)", s.NamespaceID, s.Name, s.Left, s.Right)
}

// Dependency is an edge from an operator to an object it references.
type Dependency struct {
	ClassID  oid.Oid
	ObjectID oid.Oid
}

// Dependencies returns the objects the row references: its namespace,
// its argument and result types, its function, and its estimators when
// set. Links to other operators are not dependencies; removing either
// end clears the link instead.
func (op *Operator) Dependencies() []Dependency {
	deps := []Dependency{{catalog.NamespaceRelationID, op.NamespaceID}}
	for _, t := range []oid.Oid{op.Left, op.Right, op.Result} {
		if t != catalog.InvalidOid {
			deps = append(deps, Dependency{catalog.TypeRelationID, t})
		}
	}
	for _, f := range []oid.Oid{op.Func, op.Restrict, op.Join} {
		if f != catalog.InvalidOid {
			deps = append(deps, Dependency{catalog.ProcRelationID, f})
		}
	}
	return dedupDeps(deps)
}

func dedupDeps(deps []Dependency) []Dependency {
	seen := make(map[Dependency]struct{}, len(deps))
	res := deps[:0]
	for _, d := range deps {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		res = append(res, d)
	}
	return res
}

// Validate checks the invariants of a stored row. A violation means the
// row was corrupted or written without going through validation, so it
// is reported as an assertion failure.
func (op *Operator) Validate() error {
	if op.ID == catalog.InvalidOid {
		return errors.AssertionFailedf("operator %q has no id", op.Name)
	}
	if op.Right == catalog.InvalidOid {
		return errors.AssertionFailedf("operator %d has no right argument type", op.ID)
	}
	if op.Func == catalog.InvalidOid || op.Result == catalog.InvalidOid {
		return errors.AssertionFailedf("operator %d has no function", op.ID)
	}
	if !op.IsBinary() {
		if op.Join != catalog.InvalidOid || op.Commutator != catalog.InvalidOid ||
			op.PendingCommutator != nil || op.CanMerge || op.CanHash {
			return errors.AssertionFailedf("prefix operator %d has binary-only attributes", op.ID)
		}
	}
	if op.Result != oid.T_bool {
		if op.Restrict != catalog.InvalidOid || op.Join != catalog.InvalidOid ||
			op.Negator != catalog.InvalidOid || op.PendingNegator != nil || op.CanMerge || op.CanHash {
			return errors.AssertionFailedf("non-boolean operator %d has boolean-only attributes", op.ID)
		}
	}
	if op.Negator == op.ID {
		return errors.AssertionFailedf("operator %d is its own negator", op.ID)
	}
	if op.Commutator != catalog.InvalidOid && op.PendingCommutator != nil {
		return errors.AssertionFailedf("operator %d has both a commutator and a pending one", op.ID)
	}
	if op.Negator != catalog.InvalidOid && op.PendingNegator != nil {
		return errors.AssertionFailedf("operator %d has both a negator and a pending one", op.ID)
	}
	return nil
}

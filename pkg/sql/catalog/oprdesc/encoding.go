// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package oprdesc

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/lib/pq/oid"
)

// rowJSON is the stored form of an Operator.
type rowJSON struct {
	ID                oid.Oid  `json:"id"`
	Name              string   `json:"name"`
	NamespaceID       oid.Oid  `json:"namespace_id"`
	Owner             string   `json:"owner"`
	Left              oid.Oid  `json:"left,omitempty"`
	Right             oid.Oid  `json:"right"`
	Result            oid.Oid  `json:"result"`
	Func              oid.Oid  `json:"func"`
	Commutator        oid.Oid  `json:"commutator,omitempty"`
	Negator           oid.Oid  `json:"negator,omitempty"`
	Restrict          oid.Oid  `json:"restrict,omitempty"`
	Join              oid.Oid  `json:"join,omitempty"`
	CanMerge          bool     `json:"can_merge,omitempty"`
	CanHash           bool     `json:"can_hash,omitempty"`
	PendingCommutator *NameRef `json:"pending_commutator,omitempty"`
	PendingNegator    *NameRef `json:"pending_negator,omitempty"`
}

// EncodeOperator returns the stored form of op.
func EncodeOperator(op *Operator) ([]byte, error) {
	b, err := json.Marshal(rowJSON{
		ID:                op.ID,
		Name:              op.Name,
		NamespaceID:       op.NamespaceID,
		Owner:             op.Owner.Normalized(),
		Left:              op.Left,
		Right:             op.Right,
		Result:            op.Result,
		Func:              op.Func,
		Commutator:        op.Commutator,
		Negator:           op.Negator,
		Restrict:          op.Restrict,
		Join:              op.Join,
		CanMerge:          op.CanMerge,
		CanHash:           op.CanHash,
		PendingCommutator: op.PendingCommutator,
		PendingNegator:    op.PendingNegator,
	})
	return b, errors.Wrapf(err, "encoding operator %d", op.ID)
}

// DecodeOperator parses the stored form of an operator.
func DecodeOperator(b []byte) (*Operator, error) {
	var r rowJSON
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, errors.NewAssertionErrorWithWrappedErrf(err, "decoding operator row")
	}
	return &Operator{
		ID:                r.ID,
		Name:              r.Name,
		NamespaceID:       r.NamespaceID,
		Owner:             username.MakeSQLUsernameFromPreNormalizedString(r.Owner),
		Left:              r.Left,
		Right:             r.Right,
		Result:            r.Result,
		Func:              r.Func,
		Commutator:        r.Commutator,
		Negator:           r.Negator,
		Restrict:          r.Restrict,
		Join:              r.Join,
		CanMerge:          r.CanMerge,
		CanHash:           r.CanHash,
		PendingCommutator: r.PendingCommutator,
		PendingNegator:    r.PendingNegator,
	}, nil
}

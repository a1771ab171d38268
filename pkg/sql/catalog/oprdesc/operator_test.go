// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package oprdesc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func int4Eq() *Operator {
	return &Operator{
		ID:          FirstOperatorID,
		Name:        "===",
		NamespaceID: 2200,
		Owner:       username.MakeSQLUsernameFromPreNormalizedString("alice"),
		Left:        oid.T_int4,
		Right:       oid.T_int4,
		Result:      oid.T_bool,
		Func:        65,
		Restrict:    101,
		CanHash:     true,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, int4Eq().Validate())

	testCases := []struct {
		name   string
		mutate func(op *Operator)
	}{
		{"no id", func(op *Operator) { op.ID = 0 }},
		{"no right", func(op *Operator) { op.Right = 0 }},
		{"no func", func(op *Operator) { op.Func = 0 }},
		{"prefix with join", func(op *Operator) { op.Left = 0; op.CanHash = false; op.Join = 105 }},
		{"prefix with hash", func(op *Operator) { op.Left = 0 }},
		{"non-bool with restrict", func(op *Operator) { op.Result = oid.T_int4; op.CanHash = false }},
		{"own negator", func(op *Operator) { op.Negator = op.ID }},
		{"commutator and pending", func(op *Operator) {
			op.Commutator = op.ID
			op.PendingCommutator = &NameRef{NamespaceID: 2200, Name: "==="}
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op := int4Eq()
			tc.mutate(op)
			err := op.Validate()
			require.Error(t, err)
			require.True(t, errors.HasAssertionFailure(err))
		})
	}

	self := int4Eq()
	self.Commutator = self.ID
	require.NoError(t, self.Validate())
}

func TestDependencies(t *testing.T) {
	op := int4Eq()
	require.Equal(t, []Dependency{
		{catalog.NamespaceRelationID, 2200},
		{catalog.TypeRelationID, oid.T_int4},
		{catalog.TypeRelationID, oid.T_bool},
		{catalog.ProcRelationID, 65},
		{catalog.ProcRelationID, 101},
	}, op.Dependencies())

	op.Left = 0
	op.Join = 0
	op.Restrict = 0
	require.Equal(t, []Dependency{
		{catalog.NamespaceRelationID, 2200},
		{catalog.TypeRelationID, oid.T_int4},
		{catalog.TypeRelationID, oid.T_bool},
		{catalog.ProcRelationID, 65},
	}, op.Dependencies())
}

func TestPatch(t *testing.T) {
	op := int4Eq()
	op.PendingNegator = &NameRef{NamespaceID: 2200, Name: "!=="}
	require.True(t, Patch{}.IsEmpty())

	p := Patch{Restrict: OidPtr(catalog.InvalidOid)}.Merge(Patch{
		Join: OidPtr(105), Negator: OidPtr(16385), ClearPendingNegator: true,
	})
	require.False(t, p.IsEmpty())
	before := op.Clone()
	p.Apply(op)

	want := before.Clone()
	want.Restrict = 0
	want.Join = 105
	want.Negator = 16385
	want.PendingNegator = nil
	if diff := cmp.Diff(want, op, cmp.AllowUnexported(username.SQLUsername{})); diff != "" {
		t.Errorf("unexpected patch result (-want +got):\n%s", diff)
	}
	// The clone is not aliased.
	require.NotNil(t, before.PendingNegator)
}

func TestEncodeDecode(t *testing.T) {
	op := int4Eq()
	op.PendingCommutator = &NameRef{NamespaceID: 2200, Name: "==="}
	b, err := EncodeOperator(op)
	require.NoError(t, err)
	got, err := DecodeOperator(b)
	require.NoError(t, err)
	if diff := cmp.Diff(op, got, cmp.AllowUnexported(username.SQLUsername{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	_, err = DecodeOperator([]byte("{"))
	require.True(t, errors.HasAssertionFailure(err))
}

func TestSignature(t *testing.T) {
	op := int4Eq()
	op.Left = oid.T_int8
	sig := op.Signature()
	require.Equal(t, Signature{2200, "===", oid.T_int4, oid.T_int8}, sig.Commuted())
	require.Equal(t, NameRef{2200, "==="}, sig.Ref())
	require.Equal(t, catalog.ObjectAddress{ClassID: 2617, ObjectID: FirstOperatorID}, op.Address())
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package oprstoretest holds the conformance tests every oprstore.Store
// must pass.
package oprstoretest

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

// MakeStore returns a fresh, empty store. The suite closes it.
type MakeStore func(t *testing.T) oprstore.Store

// NewOperator returns a valid boolean binary operator row with no id.
func NewOperator(name string, left, right oid.Oid) *oprdesc.Operator {
	return &oprdesc.Operator{
		Name:        name,
		NamespaceID: 2200,
		Owner:       username.RootUserName(),
		Left:        left,
		Right:       right,
		Result:      oid.T_bool,
		Func:        65,
	}
}

var cmpOpts = []cmp.Option{cmp.AllowUnexported(username.SQLUsername{}), cmpopts.EquateEmpty()}

// RunStoreTests runs the conformance suite.
func RunStoreTests(t *testing.T, makeStore MakeStore) {
	for _, tc := range []struct {
		name string
		fn   func(t *testing.T, s oprstore.Store)
	}{
		{"insert-fetch", testInsertFetch},
		{"unique-signature", testUniqueSignature},
		{"rollback", testRollback},
		{"patch", testPatch},
		{"delete", testDelete},
		{"pending-references", testPendingReferences},
		{"dependencies", testDependencies},
		{"scan", testScan},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := makeStore(t)
			defer func() { require.NoError(t, s.Close()) }()
			tc.fn(t, s)
		})
	}
}

func insert(t *testing.T, s oprstore.Store, op *oprdesc.Operator) oid.Oid {
	var id oid.Oid
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		var err error
		id, err = txn.InsertRow(ctx, op)
		return err
	}))
	return id
}

func fetch(t *testing.T, s oprstore.Store, id oid.Oid) *oprdesc.Operator {
	var op *oprdesc.Operator
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		var err error
		op, err = txn.FetchForUpdate(ctx, id)
		return err
	}))
	return op
}

func testInsertFetch(t *testing.T, s oprstore.Store) {
	op := NewOperator("===", oid.T_int4, oid.T_int4)
	op.Restrict = 101
	op.Join = 105
	op.CanHash = true
	id := insert(t, s, op)
	require.Equal(t, oprdesc.FirstOperatorID, id)
	require.Equal(t, oid.Oid(0), op.ID, "the caller's row must not be modified")

	got := fetch(t, s, id)
	want := op.Clone()
	want.ID = id
	if diff := cmp.Diff(want, got, cmpOpts...); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}

	require.Equal(t, id+1, insert(t, s, NewOperator("===", oid.T_int8, oid.T_int8)))
	require.Nil(t, fetch(t, s, 1))

	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		got, err := txn.LookupBySignature(ctx, want.Signature())
		require.NoError(t, err)
		require.Equal(t, id, got.ID)
		got, err = txn.LookupBySignature(ctx, oprdesc.Signature{NamespaceID: 2200, Name: "===", Right: oid.T_int4})
		require.NoError(t, err)
		require.Nil(t, got)
		return nil
	}))

	// Invalid rows are rejected.
	bad := NewOperator("!", catalog.InvalidOid, oid.T_int4)
	bad.CanHash = true
	err := s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		_, err := txn.InsertRow(ctx, bad)
		return err
	})
	require.True(t, errors.HasAssertionFailure(err))
}

func testUniqueSignature(t *testing.T, s oprstore.Store) {
	insert(t, s, NewOperator("===", oid.T_int4, oid.T_int4))
	err := s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		_, err := txn.InsertRow(ctx, NewOperator("===", oid.T_int4, oid.T_int4))
		return err
	})
	require.True(t, errors.Is(err, sqlerrors.ErrDuplicateObject), "%+v", err)
	require.Equal(t, pgcode.UniqueViolation, pgerror.GetPGCode(err))

	// Same name, other types, is an overload.
	insert(t, s, NewOperator("===", oid.T_int4, oid.T_int8))
	// Same name and types in another namespace is fine too.
	other := NewOperator("===", oid.T_int4, oid.T_int4)
	other.NamespaceID = 11
	insert(t, s, other)
}

func testRollback(t *testing.T, s oprstore.Store) {
	id := insert(t, s, NewOperator("===", oid.T_int4, oid.T_int4))
	boom := errors.New("boom")
	err := s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		if _, err := txn.InsertRow(ctx, NewOperator("<<<", oid.T_int4, oid.T_int4)); err != nil {
			return err
		}
		if err := txn.PatchRow(ctx, id, oprdesc.Patch{Restrict: oprdesc.OidPtr(101)}); err != nil {
			return err
		}
		if err := txn.SetDependencies(ctx, id, []oprdesc.Dependency{{ClassID: catalog.ProcRelationID, ObjectID: 101}}); err != nil {
			return err
		}
		return boom
	})
	require.Equal(t, boom, err)

	require.Equal(t, oid.Oid(0), fetch(t, s, id).Restrict)
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		got, err := txn.LookupBySignature(ctx, oprdesc.Signature{NamespaceID: 2200, Name: "<<<", Left: oid.T_int4, Right: oid.T_int4})
		require.NoError(t, err)
		require.Nil(t, got)
		deps, err := txn.GetDependencies(ctx, id)
		require.NoError(t, err)
		require.Empty(t, deps)
		return nil
	}))
	// The id allocated by the rolled back insert is handed out again.
	require.Equal(t, id+1, insert(t, s, NewOperator("<<<", oid.T_int4, oid.T_int4)))
}

func testPatch(t *testing.T, s oprstore.Store) {
	op := NewOperator("===", oid.T_int4, oid.T_int4)
	op.Restrict = 101
	id := insert(t, s, op)
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.PatchRow(ctx, id, oprdesc.Patch{Join: oprdesc.OidPtr(105), Commutator: oprdesc.OidPtr(id)})
	}))
	got := fetch(t, s, id)
	require.Equal(t, oid.Oid(101), got.Restrict)
	require.Equal(t, oid.Oid(105), got.Join)
	require.Equal(t, id, got.Commutator)

	err := s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.PatchRow(ctx, id+100, oprdesc.Patch{Join: oprdesc.OidPtr(0)})
	})
	require.True(t, errors.HasAssertionFailure(err))

	// A patch producing an invalid row fails.
	err = s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.PatchRow(ctx, id, oprdesc.Patch{Negator: oprdesc.OidPtr(id)})
	})
	require.True(t, errors.HasAssertionFailure(err))
}

func testDelete(t *testing.T, s oprstore.Store) {
	op := NewOperator("===", oid.T_int4, oid.T_int4)
	id := insert(t, s, op)
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.DeleteRow(ctx, id)
	}))
	require.Nil(t, fetch(t, s, id))
	err := s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.DeleteRow(ctx, id)
	})
	require.True(t, errors.HasAssertionFailure(err))
	// The signature is free again, and ids are not reused.
	require.Equal(t, id+1, insert(t, s, op))
}

func testPendingReferences(t *testing.T, s oprstore.Store) {
	ref := oprdesc.NameRef{NamespaceID: 2200, Name: ">>>"}
	a := NewOperator("<<<", oid.T_int4, oid.T_int8)
	a.PendingCommutator = &ref
	aID := insert(t, s, a)
	b := NewOperator("!==", oid.T_int8, oid.T_int4)
	b.PendingNegator = &ref
	bID := insert(t, s, b)
	c := NewOperator("<=>", oid.T_int4, oid.T_int4)
	c.PendingCommutator = &ref
	c.PendingNegator = &ref
	cID := insert(t, s, c)

	scan := func() []oid.Oid {
		var ids []oid.Oid
		require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
			return txn.ScanPendingReferences(ctx, ref, func(op *oprdesc.Operator) error {
				ids = append(ids, op.ID)
				return nil
			})
		}))
		return ids
	}
	require.Equal(t, []oid.Oid{aID, bID, cID}, scan())

	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.PatchRow(ctx, aID, oprdesc.Patch{Commutator: oprdesc.OidPtr(bID), ClearPendingCommutator: true})
	}))
	require.Equal(t, []oid.Oid{bID, cID}, scan())

	// Clearing one of two references to the same name keeps the entry.
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.PatchRow(ctx, cID, oprdesc.Patch{ClearPendingNegator: true})
	}))
	require.Equal(t, []oid.Oid{bID, cID}, scan())

	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.DeleteRow(ctx, bID)
	}))
	require.Equal(t, []oid.Oid{cID}, scan())

	// The callback may write.
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.ScanPendingReferences(ctx, ref, func(op *oprdesc.Operator) error {
			return txn.PatchRow(ctx, op.ID, oprdesc.Patch{ClearPendingCommutator: true})
		})
	}))
	require.Empty(t, scan())
}

func testDependencies(t *testing.T, s oprstore.Store) {
	op := NewOperator("===", oid.T_int4, oid.T_int4)
	op.Restrict = 101
	id := insert(t, s, op)
	other := insert(t, s, NewOperator("<<<", oid.T_int4, oid.T_int4))
	get := func(id oid.Oid) []oprdesc.Dependency {
		var deps []oprdesc.Dependency
		require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
			var err error
			deps, err = txn.GetDependencies(ctx, id)
			return err
		}))
		return deps
	}
	set := func(id oid.Oid, deps []oprdesc.Dependency) {
		require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
			return txn.SetDependencies(ctx, id, deps)
		}))
	}
	require.Empty(t, get(id))
	set(id, op.Dependencies())
	set(other, []oprdesc.Dependency{{ClassID: catalog.ProcRelationID, ObjectID: 65}})
	// Edges come back ordered by class, then object.
	require.Equal(t, []oprdesc.Dependency{
		{ClassID: catalog.TypeRelationID, ObjectID: oid.T_bool},
		{ClassID: catalog.TypeRelationID, ObjectID: oid.T_int4},
		{ClassID: catalog.ProcRelationID, ObjectID: 65},
		{ClassID: catalog.ProcRelationID, ObjectID: 101},
		{ClassID: catalog.NamespaceRelationID, ObjectID: 2200},
	}, get(id))

	set(id, []oprdesc.Dependency{{ClassID: catalog.ProcRelationID, ObjectID: 65}})
	require.Equal(t, []oprdesc.Dependency{{ClassID: catalog.ProcRelationID, ObjectID: 65}}, get(id))

	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.DeleteDependencies(ctx, id)
	}))
	require.Empty(t, get(id))
	require.Equal(t, []oprdesc.Dependency{{ClassID: catalog.ProcRelationID, ObjectID: 65}}, get(other))
}

func testScan(t *testing.T, s oprstore.Store) {
	var want []oid.Oid
	for _, name := range []string{"<<<", "===", ">>>"} {
		want = append(want, insert(t, s, NewOperator(name, oid.T_int4, oid.T_int4)))
	}
	var got []oid.Oid
	require.NoError(t, s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.Scan(ctx, func(op *oprdesc.Operator) error {
			got = append(got, op.ID)
			return nil
		})
	}))
	require.Equal(t, want, got)

	boom := errors.New("boom")
	err := s.Txn(context.Background(), func(ctx context.Context, txn oprstore.Txn) error {
		return txn.Scan(ctx, func(*oprdesc.Operator) error { return boom })
	})
	require.Equal(t, boom, err)
}

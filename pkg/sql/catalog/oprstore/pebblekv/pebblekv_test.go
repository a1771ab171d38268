// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pebblekv_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/oprstoretest"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/pebblekv"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	oprstoretest.RunStoreTests(t, func(t *testing.T) oprstore.Store {
		e, err := pebblekv.OpenInMem(context.Background())
		require.NoError(t, err)
		return oprstore.NewStore(e)
	})
}

// TestReopen checks that committed rows survive closing the store.
func TestReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := pebblekv.NewStore(ctx, dir)
	require.NoError(t, err)
	id := oid.Oid(0)
	require.NoError(t, s.Txn(ctx, func(ctx context.Context, txn oprstore.Txn) error {
		id, err = txn.InsertRow(ctx, oprstoretest.NewOperator("===", oid.T_int4, oid.T_int4))
		return err
	}))
	require.NoError(t, s.Close())

	s, err = pebblekv.NewStore(ctx, dir)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Txn(ctx, func(ctx context.Context, txn oprstore.Txn) error {
		op, err := txn.FetchForUpdate(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, op)
		require.Equal(t, "===", op.Name)
		next, err := txn.InsertRow(ctx, oprstoretest.NewOperator("<<<", oid.T_int4, oid.T_int4))
		require.NoError(t, err)
		require.Equal(t, oprdesc.FirstOperatorID+1, next)
		return nil
	}))
}

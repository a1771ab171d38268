// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package badgerkv_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/badgerkv"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/oprstoretest"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	oprstoretest.RunStoreTests(t, func(t *testing.T) oprstore.Store {
		e, err := badgerkv.OpenInMem(context.Background())
		require.NoError(t, err)
		return oprstore.NewStore(e)
	})
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := badgerkv.NewStore(ctx, dir)
	require.NoError(t, err)
	var id oid.Oid
	require.NoError(t, s.Txn(ctx, func(ctx context.Context, txn oprstore.Txn) error {
		id, err = txn.InsertRow(ctx, oprstoretest.NewOperator("===", oid.T_int4, oid.T_int4))
		return err
	}))
	require.NoError(t, s.Close())

	s, err = badgerkv.NewStore(ctx, dir)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()
	require.NoError(t, s.Txn(ctx, func(ctx context.Context, txn oprstore.Txn) error {
		op, err := txn.FetchForUpdate(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, op)
		return nil
	}))
}

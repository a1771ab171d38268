// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package nstree

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/util/iterutil"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

func fn(id, schema oid.Oid, name string) *catalog.FunctionDescriptor {
	return &catalog.FunctionDescriptor{ID: id, SchemaID: schema, Name: name}
}

func ids(t *testing.T, iter func(EntryIterator) error) []oid.Oid {
	var res []oid.Oid
	require.NoError(t, iter(func(e catalog.NameEntry) error {
		res = append(res, e.GetID())
		return nil
	}))
	return res
}

func TestNameMap(t *testing.T) {
	var nm NameMap
	require.Equal(t, 0, nm.Len())
	require.Nil(t, nm.GetByID(1))
	require.Nil(t, nm.Remove(1))

	nm.Upsert(fn(3, 11, "f"))
	nm.Upsert(fn(1, 11, "f"))
	nm.Upsert(fn(2, 11, "g"))
	nm.Upsert(fn(4, 2200, "f"))
	require.Equal(t, 4, nm.Len())

	byName := func(schema oid.Oid, name string) []oid.Oid {
		return ids(t, func(f EntryIterator) error { return nm.IterateByName(schema, name, f) })
	}
	require.Equal(t, []oid.Oid{1, 3}, byName(11, "f"))
	require.Equal(t, []oid.Oid{4}, byName(2200, "f"))
	require.Nil(t, byName(11, "h"))
	require.Equal(t, []oid.Oid{1, 3, 2},
		ids(t, func(f EntryIterator) error { return nm.IterateSchema(11, f) }))

	// Renaming through upsert moves the name index entry.
	nm.Upsert(fn(3, 11, "h"))
	require.Equal(t, []oid.Oid{1}, byName(11, "f"))
	require.Equal(t, []oid.Oid{3}, byName(11, "h"))

	require.Equal(t, oid.Oid(1), nm.Remove(1).GetID())
	require.Nil(t, byName(11, "f"))
	require.Equal(t, []oid.Oid{2, 3, 4}, ids(t, nm.IterateByID))

	var n int
	require.NoError(t, nm.IterateByID(func(catalog.NameEntry) error {
		n++
		return iterutil.StopIteration()
	}))
	require.Equal(t, 1, n)

	boom := errors.New("boom")
	require.Equal(t, boom, nm.IterateByID(func(catalog.NameEntry) error { return boom }))

	nm.Clear()
	require.Equal(t, 0, nm.Len())
}

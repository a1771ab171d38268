// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package oprstore persists operator rows, their unique name index and
// their dependency edges on a transactional key-value engine.
package oprstore

import (
	"context"

	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/lib/pq/oid"
)

// Store is the operator catalog store.
type Store interface {
	// Txn runs fn in a transaction. If fn returns an error, none of its
	// writes are applied; otherwise they are all committed. Transactions
	// are serialized.
	Txn(ctx context.Context, fn func(ctx context.Context, txn Txn) error) error
	// Close releases the underlying engine.
	Close() error
}

// Txn is the set of row operations available inside a transaction.
type Txn interface {
	// InsertRow writes a new row, allocating its id when op.ID is unset,
	// and returns the id. A row with the same signature makes it fail
	// with a DuplicateObject error.
	InsertRow(ctx context.Context, op *oprdesc.Operator) (oid.Oid, error)
	// FetchForUpdate returns the row with the given id, or nil if there
	// is none. The returned row is a copy.
	FetchForUpdate(ctx context.Context, id oid.Oid) (*oprdesc.Operator, error)
	// LookupBySignature returns the row with the given signature, or nil.
	LookupBySignature(ctx context.Context, sig oprdesc.Signature) (*oprdesc.Operator, error)
	// PatchRow applies p to an existing row. A missing row is an
	// assertion failure.
	PatchRow(ctx context.Context, id oid.Oid, p oprdesc.Patch) error
	// DeleteRow removes an existing row. A missing row is an assertion
	// failure.
	DeleteRow(ctx context.Context, id oid.Oid) error
	// ScanPendingReferences calls fn for each row holding a pending
	// commutator or negator reference to ref, in id order.
	ScanPendingReferences(ctx context.Context, ref oprdesc.NameRef, fn func(*oprdesc.Operator) error) error
	// Scan calls fn for each row in id order.
	Scan(ctx context.Context, fn func(*oprdesc.Operator) error) error

	// SetDependencies replaces the dependency edges recorded for id.
	SetDependencies(ctx context.Context, id oid.Oid, deps []oprdesc.Dependency) error
	// GetDependencies returns the dependency edges recorded for id.
	GetDependencies(ctx context.Context, id oid.Oid) ([]oprdesc.Dependency, error)
	// DeleteDependencies removes every dependency edge recorded for id.
	DeleteDependencies(ctx context.Context, id oid.Oid) error
}

// Engine is a transactional ordered key-value engine.
type Engine interface {
	// Update runs fn against a batch. The batch reads its own writes.
	// The writes are committed iff fn returns nil.
	Update(ctx context.Context, fn func(b Batch) error) error
	Close() error
}

// Batch is the view of an engine inside Engine.Update.
type Batch interface {
	// Get returns the value for key, or nil and false if there is none.
	// The returned slice is owned by the caller.
	Get(key []byte) ([]byte, bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	// Scan calls fn for every key in [start, end) in ascending order.
	// The slices passed to fn are only valid during the call.
	Scan(start, end []byte, fn func(key, value []byte) error) error
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package oprstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/encoding"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/opercat/pkg/util/syncutil"
	"github.com/lib/pq/oid"
)

// kvStore implements Store on an Engine.
type kvStore struct {
	engine Engine
	// mu serializes transactions. Engines give atomicity but not
	// isolation between concurrent batches, and the unique name index
	// relies on the check and the write being serialized.
	mu syncutil.Mutex
}

var _ Store = (*kvStore)(nil)

// NewStore returns a Store backed by engine. The store takes ownership
// of the engine.
func NewStore(engine Engine) Store {
	return &kvStore{engine: engine}
}

// Txn implements the Store interface.
func (s *kvStore) Txn(ctx context.Context, fn func(context.Context, Txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Update(ctx, func(b Batch) error {
		return fn(ctx, &kvTxn{b: b})
	})
}

// Close implements the Store interface.
func (s *kvStore) Close() error {
	return s.engine.Close()
}

type kvTxn struct {
	b Batch
}

var _ Txn = (*kvTxn)(nil)

func (t *kvTxn) allocID() (oid.Oid, error) {
	v, ok, err := t.b.Get(sequenceKey())
	if err != nil {
		return 0, err
	}
	next := uint64(oprdesc.FirstOperatorID)
	if ok {
		if _, next, err = encoding.DecodeUint64Ascending(v); err != nil {
			return 0, errors.NewAssertionErrorWithWrappedErrf(err, "decoding operator id sequence")
		}
	}
	if err := t.b.Set(sequenceKey(), encoding.EncodeUint64Ascending(nil, next+1)); err != nil {
		return 0, err
	}
	return oid.Oid(next), nil
}

// InsertRow implements the Txn interface.
func (t *kvTxn) InsertRow(ctx context.Context, op *oprdesc.Operator) (oid.Oid, error) {
	op = op.Clone()
	if op.ID == 0 {
		id, err := t.allocID()
		if err != nil {
			return 0, err
		}
		op.ID = id
	}
	if err := op.Validate(); err != nil {
		return 0, err
	}
	nk := nameKey(op.Signature())
	if _, exists, err := t.b.Get(nk); err != nil {
		return 0, err
	} else if exists {
		return 0, sqlerrors.NewUniqueViolationError(NameIndexName)
	}
	if _, exists, err := t.b.Get(primaryKey(op.ID)); err != nil {
		return 0, err
	} else if exists {
		return 0, errors.AssertionFailedf("operator id %d already in use", op.ID)
	}
	if err := t.putRow(op); err != nil {
		return 0, err
	}
	if err := t.b.Set(nk, encoding.EncodeUint32Ascending(nil, uint32(op.ID))); err != nil {
		return 0, err
	}
	for _, ref := range pendingRefs(op) {
		if err := t.b.Set(pendingKey(ref, op.ID), nil); err != nil {
			return 0, err
		}
	}
	log.VEventf(ctx, 2, "inserted operator %d", op.ID)
	return op.ID, nil
}

func (t *kvTxn) putRow(op *oprdesc.Operator) error {
	v, err := oprdesc.EncodeOperator(op)
	if err != nil {
		return err
	}
	return t.b.Set(primaryKey(op.ID), v)
}

// FetchForUpdate implements the Txn interface.
func (t *kvTxn) FetchForUpdate(_ context.Context, id oid.Oid) (*oprdesc.Operator, error) {
	v, ok, err := t.b.Get(primaryKey(id))
	if err != nil || !ok {
		return nil, err
	}
	op, err := oprdesc.DecodeOperator(v)
	if err != nil {
		return nil, err
	}
	if op.ID != id {
		return nil, errors.AssertionFailedf("row at key for operator %d holds operator %d", id, op.ID)
	}
	return op, nil
}

// LookupBySignature implements the Txn interface.
func (t *kvTxn) LookupBySignature(
	ctx context.Context, sig oprdesc.Signature,
) (*oprdesc.Operator, error) {
	v, ok, err := t.b.Get(nameKey(sig))
	if err != nil || !ok {
		return nil, err
	}
	_, id, err := encoding.DecodeUint32Ascending(v)
	if err != nil {
		return nil, errors.NewAssertionErrorWithWrappedErrf(err, "decoding name index entry")
	}
	op, err := t.FetchForUpdate(ctx, oid.Oid(id))
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, errors.AssertionFailedf("name index entry for %s points at missing operator %d", sig, id)
	}
	return op, nil
}

// PatchRow implements the Txn interface.
func (t *kvTxn) PatchRow(ctx context.Context, id oid.Oid, p oprdesc.Patch) error {
	old, err := t.FetchForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return errors.AssertionFailedf("cannot patch missing operator %d", id)
	}
	op := old.Clone()
	p.Apply(op)
	if err := op.Validate(); err != nil {
		return err
	}
	for _, ref := range pendingRefs(old) {
		if err := t.b.Delete(pendingKey(ref, id)); err != nil {
			return err
		}
	}
	for _, ref := range pendingRefs(op) {
		if err := t.b.Set(pendingKey(ref, id), nil); err != nil {
			return err
		}
	}
	log.VEventf(ctx, 2, "patched operator %d", id)
	return t.putRow(op)
}

// DeleteRow implements the Txn interface.
func (t *kvTxn) DeleteRow(ctx context.Context, id oid.Oid) error {
	op, err := t.FetchForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if op == nil {
		return errors.AssertionFailedf("cannot delete missing operator %d", id)
	}
	for _, ref := range pendingRefs(op) {
		if err := t.b.Delete(pendingKey(ref, id)); err != nil {
			return err
		}
	}
	if err := t.b.Delete(nameKey(op.Signature())); err != nil {
		return err
	}
	log.VEventf(ctx, 2, "deleted operator %d", id)
	return t.b.Delete(primaryKey(id))
}

// ScanPendingReferences implements the Txn interface.
func (t *kvTxn) ScanPendingReferences(
	ctx context.Context, ref oprdesc.NameRef, fn func(*oprdesc.Operator) error,
) error {
	prefix := pendingPrefix(ref)
	var ids []oid.Oid
	if err := t.b.Scan(prefix, encoding.PrefixEnd(prefix), func(k, _ []byte) error {
		id, err := decodePendingKey(ref, k)
		if err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "decoding pending reference key")
		}
		ids = append(ids, id)
		return nil
	}); err != nil {
		return err
	}
	// Rows are fetched after the scan so that fn may write.
	for _, id := range ids {
		op, err := t.FetchForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if op == nil {
			return errors.AssertionFailedf("pending reference to %s held by missing operator %d", ref, id)
		}
		if err := fn(op); err != nil {
			return err
		}
	}
	return nil
}

// Scan implements the Txn interface.
func (t *kvTxn) Scan(_ context.Context, fn func(*oprdesc.Operator) error) error {
	prefix := indexPrefix(primaryIndexID)
	var rows []*oprdesc.Operator
	if err := t.b.Scan(prefix, encoding.PrefixEnd(prefix), func(k, v []byte) error {
		id, err := decodePrimaryKey(k)
		if err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "decoding operator key")
		}
		op, err := oprdesc.DecodeOperator(v)
		if err != nil {
			return err
		}
		if op.ID != id {
			return errors.AssertionFailedf("row at key for operator %d holds operator %d", id, op.ID)
		}
		rows = append(rows, op)
		return nil
	}); err != nil {
		return err
	}
	for _, op := range rows {
		if err := fn(op); err != nil {
			return err
		}
	}
	return nil
}

// SetDependencies implements the Txn interface.
func (t *kvTxn) SetDependencies(ctx context.Context, id oid.Oid, deps []oprdesc.Dependency) error {
	if err := t.DeleteDependencies(ctx, id); err != nil {
		return err
	}
	for _, d := range deps {
		if err := t.b.Set(depKey(id, d), nil); err != nil {
			return err
		}
	}
	return nil
}

// GetDependencies implements the Txn interface.
func (t *kvTxn) GetDependencies(_ context.Context, id oid.Oid) ([]oprdesc.Dependency, error) {
	prefix := depPrefix(id)
	var deps []oprdesc.Dependency
	err := t.b.Scan(prefix, encoding.PrefixEnd(prefix), func(k, _ []byte) error {
		d, err := decodeDepKey(id, k)
		if err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "decoding dependency key")
		}
		deps = append(deps, d)
		return nil
	})
	return deps, err
}

// DeleteDependencies implements the Txn interface.
func (t *kvTxn) DeleteDependencies(ctx context.Context, id oid.Oid) error {
	deps, err := t.GetDependencies(ctx, id)
	if err != nil {
		return err
	}
	for _, d := range deps {
		if err := t.b.Delete(depKey(id, d)); err != nil {
			return err
		}
	}
	return nil
}

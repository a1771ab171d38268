// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package pebblekv is an oprstore.Engine on a pebble database.
package pebblekv

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Engine implements oprstore.Engine. Each Update runs on an indexed
// batch which is committed synchronously on success and closed
// otherwise.
type Engine struct {
	db  *pebble.DB
	dir string
}

var _ oprstore.Engine = (*Engine)(nil)

// Open opens or creates a pebble database in dir. A nil fs means the
// default on-disk filesystem.
func Open(ctx context.Context, dir string, fs vfs.FS) (*Engine, error) {
	opts := &pebble.Options{}
	if fs != nil {
		opts.FS = fs
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening pebble store at %s", dir)
	}
	log.Infof(ctx, "opened pebble operator store at %s", dir)
	return &Engine{db: db, dir: dir}, nil
}

// OpenInMem opens a pebble database on an in-memory filesystem.
func OpenInMem(ctx context.Context) (*Engine, error) {
	return Open(ctx, "", vfs.NewMem())
}

// NewStore opens an oprstore.Store on a pebble database in dir.
func NewStore(ctx context.Context, dir string) (oprstore.Store, error) {
	e, err := Open(ctx, dir, nil)
	if err != nil {
		return nil, err
	}
	return oprstore.NewStore(e), nil
}

// Update implements the oprstore.Engine interface.
func (e *Engine) Update(ctx context.Context, fn func(b oprstore.Batch) error) (retErr error) {
	b := e.db.NewIndexedBatch()
	defer func() {
		retErr = errors.CombineErrors(retErr, b.Close())
	}()
	if err := fn(&batch{b: b}); err != nil {
		log.VEventf(ctx, 2, "discarding pebble batch: %v", err)
		return err
	}
	return b.Commit(pebble.Sync)
}

// Close implements the oprstore.Engine interface.
func (e *Engine) Close() error {
	log.Infof(context.Background(), "closing pebble operator store at %s", e.dir)
	return e.db.Close()
}

type batch struct {
	b *pebble.Batch
}

func (b *batch) Get(key []byte) ([]byte, bool, error) {
	v, closer, err := b.b.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	defer func() { _ = closer.Close() }()
	return append([]byte(nil), v...), true, nil
}

func (b *batch) Set(key, value []byte) error {
	return b.b.Set(key, value, nil)
}

func (b *batch) Delete(key []byte) error {
	return b.b.Delete(key, nil)
}

func (b *batch) Scan(start, end []byte, fn func(key, value []byte) error) (retErr error) {
	iter, err := b.b.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.CombineErrors(retErr, iter.Close())
	}()
	for valid := iter.First(); valid; valid = iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

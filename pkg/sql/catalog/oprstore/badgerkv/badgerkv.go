// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package badgerkv is an oprstore.Engine on a badger database.
package badgerkv

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/dgraph-io/badger/v2"
)

// Engine implements oprstore.Engine. Each Update runs in a badger
// read-write transaction which is discarded unless it commits.
type Engine struct {
	db *badger.DB
}

var _ oprstore.Engine = (*Engine)(nil)

// logger routes badger's logging through pkg/util/log.
type logger struct {
	ctx context.Context
}

var _ badger.Logger = logger{}

func (l logger) Errorf(format string, args ...interface{}) {
	log.Errorf(l.ctx, "badger: "+format, args...)
}

func (l logger) Warningf(format string, args ...interface{}) {
	log.Warningf(l.ctx, "badger: "+format, args...)
}

func (l logger) Infof(format string, args ...interface{}) {
	log.VEventf(l.ctx, 1, "badger: "+format, args...)
}

func (l logger) Debugf(format string, args ...interface{}) {
	log.VEventf(l.ctx, 3, "badger: "+format, args...)
}

func open(ctx context.Context, opts badger.Options) (*Engine, error) {
	db, err := badger.Open(opts.WithLogger(logger{ctx: ctx}))
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger store at %q", opts.Dir)
	}
	log.Infof(ctx, "opened badger operator store at %q", opts.Dir)
	return &Engine{db: db}, nil
}

// Open opens or creates a badger database in dir.
func Open(ctx context.Context, dir string) (*Engine, error) {
	return open(ctx, badger.DefaultOptions(dir))
}

// OpenInMem opens a badger database that keeps everything in memory.
func OpenInMem(ctx context.Context) (*Engine, error) {
	return open(ctx, badger.DefaultOptions("").WithInMemory(true))
}

// NewStore opens an oprstore.Store on a badger database in dir.
func NewStore(ctx context.Context, dir string) (oprstore.Store, error) {
	e, err := Open(ctx, dir)
	if err != nil {
		return nil, err
	}
	return oprstore.NewStore(e), nil
}

// Update implements the oprstore.Engine interface.
func (e *Engine) Update(ctx context.Context, fn func(b oprstore.Batch) error) error {
	txn := e.db.NewTransaction(true /* update */)
	defer txn.Discard()
	if err := fn(&batch{txn: txn}); err != nil {
		log.VEventf(ctx, 2, "discarding badger transaction: %v", err)
		return err
	}
	return txn.Commit()
}

// Close implements the oprstore.Engine interface.
func (e *Engine) Close() error {
	return e.db.Close()
}

type batch struct {
	txn *badger.Txn
}

func (b *batch) Get(key []byte) ([]byte, bool, error) {
	item, err := b.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	v, err := item.ValueCopy(nil)
	return v, true, err
}

func (b *batch) Set(key, value []byte) error {
	// Badger keeps references to the slices until commit.
	return b.txn.Set(append([]byte(nil), key...), append([]byte(nil), value...))
}

func (b *batch) Delete(key []byte) error {
	return b.txn.Delete(append([]byte(nil), key...))
}

func (b *batch) Scan(start, end []byte, fn func(key, value []byte) error) error {
	iter := b.txn.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()
	for iter.Seek(start); iter.Valid(); iter.Next() {
		item := iter.Item()
		if bytes.Compare(item.Key(), end) >= 0 {
			return nil
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(item.Key(), v); err != nil {
			return err
		}
	}
	return nil
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package memkv is an in-memory oprstore.Engine on a copy-on-write
// btree.
package memkv

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/opercat/pkg/util/syncutil"
	"github.com/google/btree"
)

const degree = 16

type kv struct {
	key, value []byte
}

func (i *kv) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(*kv).key) < 0
}

// Engine implements oprstore.Engine. Each Update works on a lazy clone
// of the tree, which replaces the committed tree only if the update
// succeeds.
type Engine struct {
	mu struct {
		syncutil.Mutex
		tree   *btree.BTree
		closed bool
	}
}

var _ oprstore.Engine = (*Engine)(nil)

// New returns an empty engine.
func New() *Engine {
	e := &Engine{}
	e.mu.tree = btree.New(degree)
	return e
}

// NewStore returns an oprstore.Store on a fresh in-memory engine.
func NewStore(ctx context.Context) oprstore.Store {
	log.VEventf(ctx, 1, "opening in-memory operator store")
	return oprstore.NewStore(New())
}

// Update implements the oprstore.Engine interface.
func (e *Engine) Update(ctx context.Context, fn func(b oprstore.Batch) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.closed {
		return errors.New("engine is closed")
	}
	b := &batch{tree: e.mu.tree.Clone()}
	if err := fn(b); err != nil {
		log.VEventf(ctx, 2, "discarding in-memory batch: %v", err)
		return err
	}
	e.mu.tree = b.tree
	return nil
}

// Close implements the oprstore.Engine interface.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mu.closed = true
	e.mu.tree = nil
	return nil
}

// Len returns the number of committed keys.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mu.tree == nil {
		return 0
	}
	return e.mu.tree.Len()
}

type batch struct {
	tree *btree.BTree
}

func (b *batch) Get(key []byte) ([]byte, bool, error) {
	got := b.tree.Get(&kv{key: key})
	if got == nil {
		return nil, false, nil
	}
	return append([]byte(nil), got.(*kv).value...), true, nil
}

func (b *batch) Set(key, value []byte) error {
	b.tree.ReplaceOrInsert(&kv{
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.tree.Delete(&kv{key: key})
	return nil
}

func (b *batch) Scan(start, end []byte, fn func(key, value []byte) error) error {
	var err error
	b.tree.AscendRange(&kv{key: start}, &kv{key: end}, func(i btree.Item) bool {
		it := i.(*kv)
		err = fn(it.key, it.value)
		return err == nil
	})
	return err
}

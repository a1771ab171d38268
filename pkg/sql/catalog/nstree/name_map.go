// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package nstree provides ordered in-memory indexes of catalog entries.
package nstree

import (
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/util/iterutil"
	"github.com/google/btree"
	"github.com/lib/pq/oid"
)

const degree = 8

// EntryIterator is used to iterate namespace entries. Returning
// iterutil.StopIteration() ends the iteration without error.
type EntryIterator func(entry catalog.NameEntry) error

// NameMap is a lookup structure for catalog entries. It is used to
// provide indexed access to a set of entries either by name or by ID.
// Unlike a namespace of relations, several entries may share a name,
// so the name index is ordered by (schema, name, id). The entries'
// properties are indexed; they must not change or else the index will
// be corrupted. Safe for use without initialization.
type NameMap struct {
	byID   *btree.BTree
	byName *btree.BTree
}

type byIDItem struct {
	id    oid.Oid
	entry catalog.NameEntry
}

func (i *byIDItem) Less(than btree.Item) bool {
	return i.id < than.(*byIDItem).id
}

type byNameItem struct {
	schemaID oid.Oid
	name     string
	id       oid.Oid
	entry    catalog.NameEntry
}

func (i *byNameItem) Less(than btree.Item) bool {
	o := than.(*byNameItem)
	if i.schemaID != o.schemaID {
		return i.schemaID < o.schemaID
	}
	if i.name != o.name {
		return i.name < o.name
	}
	return i.id < o.id
}

func makeByNameItem(e catalog.NameEntry) *byNameItem {
	return &byNameItem{schemaID: e.GetParentSchemaID(), name: e.GetName(), id: e.GetID(), entry: e}
}

// Upsert adds the entry to the map. An entry with the same id is
// replaced.
func (dt *NameMap) Upsert(e catalog.NameEntry) {
	dt.maybeInitialize()
	if replaced := dt.byID.ReplaceOrInsert(&byIDItem{id: e.GetID(), entry: e}); replaced != nil {
		dt.byName.Delete(makeByNameItem(replaced.(*byIDItem).entry))
	}
	dt.byName.ReplaceOrInsert(makeByNameItem(e))
}

// Remove removes the entry with the given ID from the map and returns
// it if it exists.
func (dt *NameMap) Remove(id oid.Oid) catalog.NameEntry {
	if !dt.initialized() {
		return nil
	}
	removed := dt.byID.Delete(&byIDItem{id: id})
	if removed == nil {
		return nil
	}
	e := removed.(*byIDItem).entry
	dt.byName.Delete(makeByNameItem(e))
	return e
}

// GetByID gets an entry from the map by id.
func (dt *NameMap) GetByID(id oid.Oid) catalog.NameEntry {
	if !dt.initialized() {
		return nil
	}
	if got := dt.byID.Get(&byIDItem{id: id}); got != nil {
		return got.(*byIDItem).entry
	}
	return nil
}

// IterateByName iterates, in ascending id order, every entry with the
// given name in the schema.
func (dt *NameMap) IterateByName(schemaID oid.Oid, name string, f EntryIterator) (err error) {
	if !dt.initialized() {
		return nil
	}
	dt.byName.AscendGreaterOrEqual(&byNameItem{schemaID: schemaID, name: name}, func(i btree.Item) bool {
		it := i.(*byNameItem)
		if it.schemaID != schemaID || it.name != name {
			return false
		}
		err = f(it.entry)
		return err == nil
	})
	return iterutil.Map(err)
}

// IterateSchema iterates the entries of a schema ordered by name, then
// id.
func (dt *NameMap) IterateSchema(schemaID oid.Oid, f EntryIterator) (err error) {
	if !dt.initialized() {
		return nil
	}
	dt.byName.AscendGreaterOrEqual(&byNameItem{schemaID: schemaID}, func(i btree.Item) bool {
		it := i.(*byNameItem)
		if it.schemaID != schemaID {
			return false
		}
		err = f(it.entry)
		return err == nil
	})
	return iterutil.Map(err)
}

// IterateByID iterates the entries by ID, ascending.
func (dt *NameMap) IterateByID(f EntryIterator) (err error) {
	if !dt.initialized() {
		return nil
	}
	dt.byID.Ascend(func(i btree.Item) bool {
		err = f(i.(*byIDItem).entry)
		return err == nil
	})
	return iterutil.Map(err)
}

// Len returns the number of entries in the map.
func (dt *NameMap) Len() int {
	if !dt.initialized() {
		return 0
	}
	return dt.byID.Len()
}

// Clear removes all entries.
func (dt *NameMap) Clear() {
	*dt = NameMap{}
}

func (dt *NameMap) initialized() bool {
	return dt.byID != nil && dt.byName != nil
}

func (dt *NameMap) maybeInitialize() {
	if dt.initialized() {
		return
	}
	*dt = NameMap{
		byID:   btree.New(degree),
		byName: btree.New(degree),
	}
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package funccat is an in-memory catalog of schemas, types and
// functions. It backs operator DDL in tests and in the command-line
// driver.
package funccat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/nstree"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/iterutil"
	"github.com/cockroachdb/opercat/pkg/util/syncutil"
	"github.com/dgraph-io/ristretto"
	"github.com/lib/pq/oid"
)

// FirstUserFunctionID is the first id handed out to functions, types
// and schemas added after the builtins. It sits well above the operator
// id range so that the two never collide in messages or dependencies.
const FirstUserFunctionID oid.Oid = 1 << 20

// Catalog implements catalog.SchemaResolver, catalog.TypeResolver and
// catalog.FunctionResolver over in-memory indexes.
type Catalog struct {
	mu struct {
		syncutil.RWMutex
		schemas   nstree.NameMap
		types     nstree.NameMap
		functions nstree.NameMap
		// aliases maps a schema id and lower-case alias to a type id.
		aliases map[oid.Oid]map[string]oid.Oid
		nextID  oid.Oid
		// generation is bumped by every function change. Cached overload
		// sets from an older generation are ignored, since ristretto
		// applies writes and deletions asynchronously.
		generation uint64
	}
	overloads *ristretto.Cache
}

type overloadSet struct {
	generation uint64
	fns        []*catalog.FunctionDescriptor
}

var _ catalog.SchemaResolver = (*Catalog)(nil)
var _ catalog.TypeResolver = (*Catalog)(nil)
var _ catalog.FunctionResolver = (*Catalog)(nil)

// New returns an empty catalog. Most callers want NewBuiltinCatalog.
func New() (*Catalog, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 12,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating overload cache")
	}
	c := &Catalog{overloads: cache}
	c.mu.aliases = make(map[oid.Oid]map[string]oid.Oid)
	c.mu.nextID = FirstUserFunctionID
	return c, nil
}

// Close releases the cache goroutines.
func (c *Catalog) Close() {
	c.overloads.Close()
}

func (c *Catalog) allocIDLocked() oid.Oid {
	id := c.mu.nextID
	c.mu.nextID++
	return id
}

// AddSchema creates a schema. A zero id allocates one.
func (c *Catalog) AddSchema(
	id oid.Oid, name string, owner username.SQLUsername,
) (*catalog.SchemaDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schemaByNameLocked(name) != nil {
		return nil, pgerror.Newf(pgcode.DuplicateObject, "schema %q already exists", name)
	}
	if id == catalog.InvalidOid {
		id = c.allocIDLocked()
	} else if c.existsLocked(id) {
		return nil, errors.AssertionFailedf("object id %d already in use", id)
	}
	d := &catalog.SchemaDescriptor{ID: id, Name: name, Owner: owner}
	c.mu.schemas.Upsert(d)
	return d, nil
}

// AddType creates a type in the schema. A zero id allocates one.
func (c *Catalog) AddType(
	id oid.Oid, schemaID oid.Oid, name string, aliases ...string,
) (*catalog.TypeDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mu.schemas.GetByID(schemaID) == nil {
		return nil, errors.AssertionFailedf("schema %d does not exist", schemaID)
	}
	for _, n := range append([]string{name}, aliases...) {
		if _, ok := c.mu.aliases[schemaID][strings.ToLower(n)]; ok {
			return nil, pgerror.Newf(pgcode.DuplicateObject, "type %q already exists", n)
		}
	}
	if id == catalog.InvalidOid {
		id = c.allocIDLocked()
	} else if c.existsLocked(id) {
		return nil, errors.AssertionFailedf("object id %d already in use", id)
	}
	d := &catalog.TypeDescriptor{ID: id, SchemaID: schemaID, Name: name, Aliases: aliases}
	c.mu.types.Upsert(d)
	m, ok := c.mu.aliases[schemaID]
	if !ok {
		m = make(map[string]oid.Oid)
		c.mu.aliases[schemaID] = m
	}
	for _, n := range append([]string{name}, aliases...) {
		m[strings.ToLower(n)] = id
	}
	return d, nil
}

// AddFunction creates a function overload. A zero d.ID allocates one.
// The returned descriptor is owned by the catalog.
func (c *Catalog) AddFunction(d catalog.FunctionDescriptor) (*catalog.FunctionDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mu.schemas.GetByID(d.SchemaID) == nil {
		return nil, errors.AssertionFailedf("schema %d does not exist", d.SchemaID)
	}
	for _, t := range append(append([]oid.Oid(nil), d.Params...), d.ReturnType) {
		if c.mu.types.GetByID(t) == nil {
			return nil, errors.AssertionFailedf("type %d does not exist", t)
		}
	}
	if err := c.mu.functions.IterateByName(d.SchemaID, d.Name, func(e catalog.NameEntry) error {
		if e.(*catalog.FunctionDescriptor).MatchesParams(d.Params) {
			return pgerror.Newf(pgcode.DuplicateFunction,
				"function %s already exists with same argument types", d.Name)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if d.ID == catalog.InvalidOid {
		d.ID = c.allocIDLocked()
	} else if c.existsLocked(d.ID) {
		return nil, errors.AssertionFailedf("object id %d already in use", d.ID)
	}
	fd := d
	fd.Params = append([]oid.Oid(nil), d.Params...)
	c.mu.functions.Upsert(&fd)
	c.mu.generation++
	c.overloads.Del(overloadKey(d.SchemaID, d.Name))
	return &fd, nil
}

func (c *Catalog) existsLocked(id oid.Oid) bool {
	return c.mu.schemas.GetByID(id) != nil ||
		c.mu.types.GetByID(id) != nil ||
		c.mu.functions.GetByID(id) != nil
}

func (c *Catalog) schemaByNameLocked(name string) *catalog.SchemaDescriptor {
	var found *catalog.SchemaDescriptor
	_ = c.mu.schemas.IterateByName(catalog.InvalidOid, name, func(e catalog.NameEntry) error {
		found = e.(*catalog.SchemaDescriptor)
		return iterutil.StopIteration()
	})
	return found
}

// GetSchemaByName implements the catalog.SchemaResolver interface.
func (c *Catalog) GetSchemaByName(
	_ context.Context, name string,
) (*catalog.SchemaDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schemaByNameLocked(name), nil
}

// GetSchemaByID implements the catalog.SchemaResolver interface.
func (c *Catalog) GetSchemaByID(
	_ context.Context, id oid.Oid,
) (*catalog.SchemaDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e := c.mu.schemas.GetByID(id); e != nil {
		return e.(*catalog.SchemaDescriptor), nil
	}
	return nil, nil
}

// ResolveType implements the catalog.TypeResolver interface.
func (c *Catalog) ResolveType(
	_ context.Context, name *tree.TypeName, searchPath sessiondata.SearchPath,
) (*catalog.TypeDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	typName := strings.ToLower(name.Name.Name)
	lookup := func(schema string) *catalog.TypeDescriptor {
		sc := c.schemaByNameLocked(schema)
		if sc == nil {
			return nil
		}
		id, ok := c.mu.aliases[sc.ID][typName]
		if !ok {
			return nil
		}
		return c.mu.types.GetByID(id).(*catalog.TypeDescriptor)
	}
	if name.Name.ExplicitSchema() {
		if d := lookup(name.Name.Schema); d != nil {
			return d, nil
		}
		return nil, sqlerrors.NewUndefinedTypeError(name.Name.String())
	}
	iter := searchPath.Iter()
	for schema, ok := iter(); ok; schema, ok = iter() {
		if d := lookup(schema); d != nil {
			return d, nil
		}
	}
	return nil, sqlerrors.NewUndefinedTypeError(name.Name.String())
}

// GetTypeByID implements the catalog.TypeResolver interface.
func (c *Catalog) GetTypeByID(_ context.Context, id oid.Oid) (*catalog.TypeDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e := c.mu.types.GetByID(id); e != nil {
		return e.(*catalog.TypeDescriptor), nil
	}
	return nil, nil
}

func overloadKey(schemaID oid.Oid, name string) string {
	return fmt.Sprintf("%d/%s", schemaID, name)
}

// GetFunctionsByName implements the catalog.FunctionResolver interface.
func (c *Catalog) GetFunctionsByName(
	_ context.Context, schemaID oid.Oid, name string,
) ([]*catalog.FunctionDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := overloadKey(schemaID, name)
	if v, ok := c.overloads.Get(key); ok {
		if set := v.(overloadSet); set.generation == c.mu.generation {
			return set.fns, nil
		}
	}
	var res []*catalog.FunctionDescriptor
	if err := c.mu.functions.IterateByName(schemaID, name, func(e catalog.NameEntry) error {
		res = append(res, e.(*catalog.FunctionDescriptor))
		return nil
	}); err != nil {
		return nil, err
	}
	c.overloads.Set(key, overloadSet{generation: c.mu.generation, fns: res}, 1)
	return res, nil
}

// GetFunctionByID implements the catalog.FunctionResolver interface.
func (c *Catalog) GetFunctionByID(
	_ context.Context, id oid.Oid,
) (*catalog.FunctionDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e := c.mu.functions.GetByID(id); e != nil {
		return e.(*catalog.FunctionDescriptor), nil
	}
	return nil, nil
}

// VisitFunctions calls fn for every function in the schema, ordered by
// name.
func (c *Catalog) VisitFunctions(schemaID oid.Oid, fn func(*catalog.FunctionDescriptor) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mu.functions.IterateSchema(schemaID, func(e catalog.NameEntry) error {
		return fn(e.(*catalog.FunctionDescriptor))
	})
}

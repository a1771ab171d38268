// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package privilege

import (
	"context"

	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/util/syncutil"
	"github.com/lib/pq/oid"
)

// OwnedObject is an object which has an owner.
type OwnedObject interface {
	GetID() oid.Oid
	GetOwner() username.SQLUsername
}

// Authorizer answers the capability checks made by catalog DDL. Answers
// are never cached by callers across statements.
type Authorizer interface {
	// CanCreateIn reports whether user may create objects in the schema.
	CanCreateIn(ctx context.Context, schemaID oid.Oid, user username.SQLUsername) bool
	// CanUse reports whether user has USAGE on the type.
	CanUse(ctx context.Context, typeID oid.Oid, user username.SQLUsername) bool
	// CanExecute reports whether user has EXECUTE on the function.
	CanExecute(ctx context.Context, funcID oid.Oid, user username.SQLUsername) bool
	// HasOwnership reports whether user owns obj, directly or through
	// role membership, or is an admin.
	HasOwnership(ctx context.Context, obj OwnedObject, user username.SQLUsername) bool
}

type grantKey struct {
	objType ObjectType
	id      oid.Oid
	grantee string
}

// Grants is an in-memory grant table implementing Authorizer. Members
// of the admin role, and root, pass every check. Grants to the public
// role apply to everyone.
type Grants struct {
	mu struct {
		syncutil.RWMutex
		grants  map[grantKey]uint32
		members map[string]map[string]struct{}
	}
}

var _ Authorizer = (*Grants)(nil)

// NewGrants returns an empty grant table.
func NewGrants() *Grants {
	g := &Grants{}
	g.mu.grants = make(map[grantKey]uint32)
	g.mu.members = make(map[string]map[string]struct{})
	return g
}

// Grant adds privileges on the object to grantee.
func (g *Grants) Grant(
	objType ObjectType, id oid.Oid, grantee username.SQLUsername, privs ...Kind,
) error {
	for _, p := range privs {
		if err := p.ValidateFor(objType); err != nil {
			return err
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	k := grantKey{objType: objType, id: id, grantee: grantee.Normalized()}
	g.mu.grants[k] |= List(privs).ToBitField()
	return nil
}

// Revoke removes privileges on the object from grantee.
func (g *Grants) Revoke(objType ObjectType, id oid.Oid, grantee username.SQLUsername, privs ...Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := grantKey{objType: objType, id: id, grantee: grantee.Normalized()}
	if List(privs).ToBitField()&ALL.Mask() != 0 {
		delete(g.mu.grants, k)
		return
	}
	g.mu.grants[k] &^= List(privs).ToBitField()
	if g.mu.grants[k] == 0 {
		delete(g.mu.grants, k)
	}
}

// GrantRole makes member a member of role.
func (g *Grants) GrantRole(role, member username.SQLUsername) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.mu.members[role.Normalized()]
	if !ok {
		m = make(map[string]struct{})
		g.mu.members[role.Normalized()] = m
	}
	m[member.Normalized()] = struct{}{}
}

// Privileges returns the privileges held on the object by grantee
// directly, without considering roles.
func (g *Grants) Privileges(objType ObjectType, id oid.Oid, grantee username.SQLUsername) List {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return ListFromBitField(g.mu.grants[grantKey{objType: objType, id: id, grantee: grantee.Normalized()}])
}

// IsAdmin reports whether user is root or a member of the admin role.
func (g *Grants) IsAdmin(user username.SQLUsername) bool {
	if user.IsRootUser() || user.IsAdminRole() {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.memberOfLocked(username.AdminRole, user.Normalized())
}

// memberOfLocked reports whether user belongs to role, transitively.
func (g *Grants) memberOfLocked(role, user string) bool {
	seen := map[string]bool{}
	var visit func(r string) bool
	visit = func(r string) bool {
		if seen[r] {
			return false
		}
		seen[r] = true
		for m := range g.mu.members[r] {
			if m == user || visit(m) {
				return true
			}
		}
		return false
	}
	return visit(role)
}

func (g *Grants) check(objType ObjectType, id oid.Oid, user username.SQLUsername, kind Kind) bool {
	if g.IsAdmin(user) {
		return true
	}
	want := kind.Mask() | ALL.Mask()
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, grantee := range []string{user.Normalized(), username.PublicRole} {
		if g.mu.grants[grantKey{objType: objType, id: id, grantee: grantee}]&want != 0 {
			return true
		}
	}
	for role := range g.mu.members {
		if g.mu.grants[grantKey{objType: objType, id: id, grantee: role}]&want != 0 &&
			g.memberOfLocked(role, user.Normalized()) {
			return true
		}
	}
	return false
}

// CanCreateIn implements the Authorizer interface.
func (g *Grants) CanCreateIn(_ context.Context, schemaID oid.Oid, user username.SQLUsername) bool {
	return g.check(Schema, schemaID, user, CREATE)
}

// CanUse implements the Authorizer interface.
func (g *Grants) CanUse(_ context.Context, typeID oid.Oid, user username.SQLUsername) bool {
	return g.check(Type, typeID, user, USAGE)
}

// CanExecute implements the Authorizer interface.
func (g *Grants) CanExecute(_ context.Context, funcID oid.Oid, user username.SQLUsername) bool {
	return g.check(Function, funcID, user, EXECUTE)
}

// HasOwnership implements the Authorizer interface.
func (g *Grants) HasOwnership(_ context.Context, obj OwnedObject, user username.SQLUsername) bool {
	owner := obj.GetOwner()
	if owner == user || g.IsAdmin(user) {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.memberOfLocked(owner.Normalized(), user.Normalized())
}

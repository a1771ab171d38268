// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package privilege

import (
	"context"
	"testing"

	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

type ownedObject struct {
	id    oid.Oid
	owner username.SQLUsername
}

func (o ownedObject) GetID() oid.Oid                 { return o.id }
func (o ownedObject) GetOwner() username.SQLUsername { return o.owner }

func TestGrants(t *testing.T) {
	ctx := context.Background()
	alice := username.MakeSQLUsernameFromPreNormalizedString("alice")
	bob := username.MakeSQLUsernameFromPreNormalizedString("bob")
	g := NewGrants()

	require.False(t, g.CanCreateIn(ctx, 2200, alice))
	require.True(t, g.CanCreateIn(ctx, 2200, username.RootUserName()))

	require.NoError(t, g.Grant(Schema, 2200, alice, CREATE))
	require.True(t, g.CanCreateIn(ctx, 2200, alice))
	require.False(t, g.CanCreateIn(ctx, 2200, bob))

	require.NoError(t, g.Grant(Type, oid.T_int4, username.PublicRoleName(), USAGE))
	require.True(t, g.CanUse(ctx, oid.T_int4, bob))
	require.False(t, g.CanUse(ctx, oid.T_int8, bob))

	require.Error(t, g.Grant(Type, oid.T_int4, bob, EXECUTE))

	require.NoError(t, g.Grant(Function, 100, alice, ALL))
	require.True(t, g.CanExecute(ctx, 100, alice))
	g.Revoke(Function, 100, alice, ALL)
	require.False(t, g.CanExecute(ctx, 100, alice))

	require.Equal(t, List{CREATE}, g.Privileges(Schema, 2200, alice))
}

func TestOwnershipAndRoles(t *testing.T) {
	ctx := context.Background()
	alice := username.MakeSQLUsernameFromPreNormalizedString("alice")
	bob := username.MakeSQLUsernameFromPreNormalizedString("bob")
	carol := username.MakeSQLUsernameFromPreNormalizedString("carol")
	devs := username.MakeSQLUsernameFromPreNormalizedString("devs")
	g := NewGrants()

	obj := ownedObject{id: 16384, owner: alice}
	require.True(t, g.HasOwnership(ctx, obj, alice))
	require.False(t, g.HasOwnership(ctx, obj, bob))

	g.GrantRole(username.AdminRoleName(), bob)
	require.True(t, g.HasOwnership(ctx, obj, bob))
	require.True(t, g.IsAdmin(bob))

	g.GrantRole(devs, carol)
	require.NoError(t, g.Grant(Schema, 2200, devs, CREATE))
	require.True(t, g.CanCreateIn(ctx, 2200, carol))
	require.True(t, g.HasOwnership(ctx, ownedObject{id: 1, owner: devs}, carol))
}

func TestKindFromString(t *testing.T) {
	k, err := KindFromString("usage")
	require.NoError(t, err)
	require.Equal(t, USAGE, k)
	_, err = KindFromString("fly")
	require.Error(t, err)
	require.Equal(t, "CREATE, EXECUTE", ListFromBitField(List{EXECUTE, CREATE}.ToBitField()).String())
}

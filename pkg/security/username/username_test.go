// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package username

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func TestMakeSQLUsernameFromUserInput(t *testing.T) {
	u, err := MakeSQLUsernameFromUserInput("  Alice ")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Normalized())
	require.False(t, u.IsRootUser())

	for _, bad := range []string{"", "-x", "a b", "x#"} {
		_, err := MakeSQLUsernameFromUserInput(bad)
		require.True(t, errors.Is(err, ErrUsernameInvalid), "%q", bad)
	}
}

func TestSafeFormat(t *testing.T) {
	require.Equal(t, "root", string(redact.Sprint(RootUserName())))
	require.Equal(t, "‹alice›", string(redact.Sprint(MakeSQLUsernameFromPreNormalizedString("alice"))))
	require.True(t, AdminRoleName().IsAdminRole())
	require.True(t, SQLUsername{}.Undefined())
}

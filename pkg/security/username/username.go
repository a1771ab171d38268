// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package username defines the principals that own and act on catalog
// objects.
package username

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/redact"
)

// SQLUsername represents a username valid inside SQL.
//
// Note that SQL usernames are not just ASCII names: they can start
// with digits or contain only digits; they can contain certain
// punctuation, and they can contain non-ASCII unicode letters.
type SQLUsername struct {
	u string
}

// RootUser is the default cluster administrator.
const RootUser = "root"

// AdminRole is the default (and non-droppable) role with superuser privileges.
const AdminRole = "admin"

// PublicRole is the special "public" pseudo-role.
const PublicRole = "public"

// RootUserName is the SQLUsername for RootUser.
func RootUserName() SQLUsername { return SQLUsername{RootUser} }

// AdminRoleName is the SQLUsername for AdminRole.
func AdminRoleName() SQLUsername { return SQLUsername{AdminRole} }

// PublicRoleName is the SQLUsername for PublicRole.
func PublicRoleName() SQLUsername { return SQLUsername{PublicRole} }

// MakeSQLUsernameFromPreNormalizedString takes a string containing a
// canonical username and converts it to a SQLUsername. The caller of
// this promises that the argument is pre-normalized.
func MakeSQLUsernameFromPreNormalizedString(username string) SQLUsername {
	return SQLUsername{u: username}
}

var validUsernameRE = regexp.MustCompile(`^[\p{Ll}0-9_][\p{Ll}0-9_.-]*$`)

// ErrUsernameInvalid indicates that an invalid username was given.
var ErrUsernameInvalid = errors.New("username is invalid")

// MakeSQLUsernameFromUserInput normalizes a username string as entered
// by a user and validates it.
func MakeSQLUsernameFromUserInput(u string) (SQLUsername, error) {
	norm := strings.ToLower(strings.TrimSpace(u))
	if len(norm) == 0 || len(norm) > 63 || !validUsernameRE.MatchString(norm) {
		return SQLUsername{}, errors.WithHint(
			pgerror.WithCandidateCode(errors.Wrapf(ErrUsernameInvalid, "%q", u), pgcode.InvalidName),
			"Usernames are case insensitive, must start with a letter, digit or underscore, "+
				"may contain letters, digits, dashes, periods, or underscores, and must not exceed 63 characters.")
	}
	return SQLUsername{u: norm}, nil
}

// Normalized returns the normalized username, suitable for equality
// comparison and lookups.
func (s SQLUsername) Normalized() string { return s.u }

// Undefined is true iff the username is an empty string.
func (s SQLUsername) Undefined() bool { return len(s.u) == 0 }

// IsRootUser is true iff the username designates the root user.
func (s SQLUsername) IsRootUser() bool { return s.u == RootUser }

// IsAdminRole is true iff the username designates the admin role.
func (s SQLUsername) IsAdminRole() bool { return s.u == AdminRole }

// IsPublicRole is true iff the username designates the public role.
func (s SQLUsername) IsPublicRole() bool { return s.u == PublicRole }

// String implements fmt.Stringer.
func (s SQLUsername) String() string { return s.u }

// SafeFormat implements redact.SafeFormatter. Usernames are considered
// sensitive, except for the built-in ones.
func (s SQLUsername) SafeFormat(w redact.SafePrinter, _ rune) {
	if s.IsRootUser() || s.IsAdminRole() || s.IsPublicRole() {
		w.Print(redact.Safe(s.u))
		return
	}
	w.Print(s.u)
}

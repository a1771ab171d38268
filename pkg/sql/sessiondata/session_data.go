// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package sessiondata

import (
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgnotice"
)

// SessionData contains the session parameters consulted by catalog DDL.
type SessionData struct {
	// User is the principal the statements run as. It owns anything it
	// creates.
	User username.SQLUsername
	// SearchPath is the list of schemas in which unqualified names are
	// resolved. The first existing schema on it is the creation schema.
	SearchPath SearchPath
	// Notices receives the non-fatal notices raised while a statement
	// runs. It may be nil, in which case notices are only logged.
	Notices pgnotice.Sender
}

// New returns session data for the given user with the default search
// path.
func New(user username.SQLUsername) *SessionData {
	return &SessionData{User: user, SearchPath: DefaultSearchPath}
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package pgnotice

import (
	"context"
	"testing"

	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	var c Collector
	ctx := context.Background()
	c.BufferClientNotice(ctx, Newf("operator %s does not exist, skipping", "==="))
	c.BufferClientNotice(ctx, NewWithSeverityf("WARNING", pgcode.Syntax,
		"operator attribute %q not recognized", "foo"))

	require.Equal(t, []string{
		"NOTICE: operator === does not exist, skipping",
		`WARNING: operator attribute "foo" not recognized`,
	}, c.Strings())
	require.Equal(t, pgcode.Syntax, pgerror.GetPGCode(c.Notices[1]))
}

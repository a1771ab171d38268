// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds_test

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/opercmds"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq/oid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func createEq(name string, extra ...string) *tree.CreateOperator {
	defs := append([]string{"leftarg=int4", "rightarg=int4", "function=int4eq"}, extra...)
	return &tree.CreateOperator{Name: tree.ParseObjectName(name), Definition: parseDefList(defs)}
}

func TestNewExecutor(t *testing.T) {
	_, err := opercmds.NewExecutor(opercmds.Config{})
	require.True(t, errors.HasAssertionFailure(err))
}

// Concurrent definitions of the same signature are serialized by the
// relation lock; exactly one of them wins.
func TestConcurrentDefine(t *testing.T) {
	defer log.Scope(t).Close(t)
	e := newTestEnv(t)

	const n = 8
	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			sd := sessiondata.New(username.RootUserName())
			_, errs[i] = e.exec.DefineOperator(e.ctx, sd, createEq("==="))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var created, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, sqlerrors.ErrDuplicateObject):
			duplicates++
		default:
			t.Fatalf("unexpected error: %+v", err)
		}
	}
	require.Equal(t, 1, created)
	require.Equal(t, n-1, duplicates)

	ops, err := e.exec.ListOperators(e.ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.Defines))
	require.Equal(t, float64(n-1), testutil.ToFloat64(e.metrics.Errors.WithLabelValues("42723")))
}

func TestMetrics(t *testing.T) {
	defer log.Scope(t).Close(t)
	e := newTestEnv(t)
	sd := sessiondata.New(username.RootUserName())

	for _, name := range []string{"===", "=~=", "=!="} {
		_, err := e.exec.DefineOperator(e.ctx, sd, createEq(name))
		require.NoError(t, err)
	}
	_, err := e.exec.DefineOperator(e.ctx, sd, createEq("===="))
	require.NoError(t, err)
	_, err = e.exec.DefineOperator(e.ctx, sd, createEq("a+"))
	require.Error(t, err)

	alter := &tree.AlterOperator{
		Operator: tree.OperatorWithArgs{
			Name: tree.MakeUnqualifiedName("==="), Left: tree.NewTypeName("int4"), Right: tree.NewTypeName("int4"),
		},
		Options: parseDefList([]string{"restrict=eqsel"}),
	}
	_, err = e.exec.AlterOperator(e.ctx, sd, alter)
	require.NoError(t, err)

	drop := &tree.DropOperator{}
	for _, s := range []string{"===(int4, int4)", "=~=(int4, int4)"} {
		o, err := tree.ParseOperatorWithArgs(s)
		require.NoError(t, err)
		drop.Operators = append(drop.Operators, o)
	}
	require.NoError(t, e.exec.DropOperator(e.ctx, sd, drop))

	ops, err := e.exec.ListOperators(e.ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.NoError(t, e.exec.RemoveOperatorByID(e.ctx, sd, ops[0].ID))
	require.Error(t, e.exec.RemoveOperatorByID(e.ctx, sd, ops[0].ID))

	require.Equal(t, float64(4), testutil.ToFloat64(e.metrics.Defines))
	require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.Alters))
	require.Equal(t, float64(3), testutil.ToFloat64(e.metrics.Removes))
	require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.Errors.WithLabelValues("42602")))
	require.Equal(t, float64(1), testutil.ToFloat64(e.metrics.Errors.WithLabelValues("42883")))
}

func TestListOperators(t *testing.T) {
	defer log.Scope(t).Close(t)
	e := newTestEnv(t)
	sd := sessiondata.New(username.RootUserName())

	_, err := e.exec.DefineOperator(e.ctx, sd, createEq("===", "commutator = ===", "negator = !==", "hashes"))
	require.NoError(t, err)

	ops, err := e.exec.ListOperators(e.ctx)
	require.NoError(t, err)
	want := []opercmds.OperatorInfo{{
		ID:         16384,
		Schema:     "public",
		Name:       "===",
		Owner:      "root",
		Left:       "integer",
		Right:      "integer",
		Result:     "boolean",
		Function:   "int4eq(integer, integer)",
		Commutator: "16384",
		Negator:    "public.!==?",
		Restrict:   "-",
		Join:       "-",
		Hashes:     true,
	}}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("unexpected listing (-want +got):\n%s", diff)
	}
	require.Equal(t, len(opercmds.Columns), len(ops[0].Row()))
	require.Equal(t, "16384", ops[0].Row()[0])
}

func TestEvents(t *testing.T) {
	defer log.Scope(t).Close(t)
	e := newTestEnv(t)
	sd := sessiondata.New(username.RootUserName())

	var events []string
	defer log.Intercept(func(entry log.Entry) {
		if msg := entry.Message.StripMarkers(); strings.HasPrefix(msg, "Structured entry: ") {
			events = append(events, msg)
		}
	})()

	addr, err := e.exec.DefineOperator(e.ctx, sd, createEq("==="))
	require.NoError(t, err)
	require.Equal(t, catalog.ObjectAddress{ClassID: catalog.OperatorRelationID, ObjectID: 16384}, addr)
	// Failed statements record nothing.
	_, err = e.exec.DefineOperator(e.ctx, sd, createEq("==="))
	require.Error(t, err)
	require.NoError(t, e.exec.RemoveOperatorByID(e.ctx, sd, oid.Oid(16384)))

	require.Len(t, events, 1)
	require.Contains(t, events[0], `"EventType":"create_operator"`)
	require.Contains(t, events[0], `"OperatorName":"public.===(integer, integer)"`)
	require.Contains(t, events[0], `"DescriptorID":16384`)
}

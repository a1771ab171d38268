// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package opercmds_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/funccat"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprdesc"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/memkv"
	"github.com/cockroachdb/opercat/pkg/sql/opercmds"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgnotice"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/sql/sqlerrors"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/lib/pq/oid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t       *testing.T
	ctx     context.Context
	cat     *funccat.Catalog
	grants  *privilege.Grants
	store   oprstore.Store
	metrics *opercmds.Metrics
	exec    *opercmds.Executor
}

func newTestEnv(t *testing.T) *testEnv {
	ctx := context.Background()
	cat, err := funccat.NewBuiltinCatalog()
	require.NoError(t, err)
	t.Cleanup(cat.Close)
	g := privilege.NewGrants()
	require.NoError(t, funccat.GrantBuiltinDefaults(g))
	store := memkv.NewStore(ctx)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	m, err := opercmds.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	exec, err := opercmds.NewExecutor(opercmds.Config{
		Store:      store,
		Schemas:    cat,
		Types:      cat,
		Functions:  cat,
		Authorizer: g,
		Metrics:    m,
	})
	require.NoError(t, err)
	return &testEnv{t: t, ctx: ctx, cat: cat, grants: g, store: store, metrics: m, exec: exec}
}

// session builds the session of a test command from its user= and
// search_path= arguments.
func (e *testEnv) session(d *datadriven.TestData) (*sessiondata.SessionData, *pgnotice.Collector) {
	user := username.RootUserName()
	if d.HasArg("user") {
		var u string
		d.ScanArgs(e.t, "user", &u)
		user = username.MakeSQLUsernameFromPreNormalizedString(u)
	}
	sd := sessiondata.New(user)
	if d.HasArg("search_path") {
		var paths []string
		d.ScanArgs(e.t, "search_path", &paths)
		sd.SearchPath = sessiondata.MakeSearchPath(paths)
	}
	notices := &pgnotice.Collector{}
	sd.Notices = notices
	return sd, notices
}

func inputLines(d *datadriven.TestData) []string {
	var res []string
	for _, l := range strings.Split(d.Input, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}

func parseDefList(lines []string) tree.DefList {
	var l tree.DefList
	for _, s := range lines {
		l = append(l, tree.ParseDefElem(s))
	}
	return l
}

func formatError(err error) string {
	return fmt.Sprintf("error: %s %s: %s", sqlerrors.KindName(err), pgerror.GetPGCode(err), err)
}

// result renders the notices of a statement followed by its outcome.
func result(notices *pgnotice.Collector, ok string, err error) string {
	var sb strings.Builder
	for _, n := range notices.Strings() {
		sb.WriteString(n)
		sb.WriteByte('\n')
	}
	if err != nil {
		sb.WriteString(formatError(err))
	} else {
		sb.WriteString(ok)
	}
	return sb.String()
}

func (e *testEnv) parseOperator(s string) tree.OperatorWithArgs {
	o, err := tree.ParseOperatorWithArgs(s)
	require.NoError(e.t, err)
	return o
}

func (e *testEnv) run(t *testing.T, d *datadriven.TestData) string {
	e.t = t
	switch d.Cmd {
	case "seed":
		s, err := funccat.LoadSeed(strings.NewReader(d.Input))
		require.NoError(t, err)
		require.NoError(t, s.Apply(e.ctx, e.cat, e.grants))
		return "ok"

	case "define":
		sd, notices := e.session(d)
		lines := inputLines(d)
		require.NotEmpty(t, lines, "define needs an operator name")
		n := &tree.CreateOperator{Name: tree.ParseObjectName(lines[0]), Definition: parseDefList(lines[1:])}
		addr, err := e.exec.DefineOperator(e.ctx, sd, n)
		return result(notices, formatAddress(addr), err)

	case "alter":
		sd, notices := e.session(d)
		lines := inputLines(d)
		require.NotEmpty(t, lines, "alter needs an operator")
		n := &tree.AlterOperator{Operator: e.parseOperator(lines[0]), Options: parseDefList(lines[1:])}
		addr, err := e.exec.AlterOperator(e.ctx, sd, n)
		return result(notices, formatAddress(addr), err)

	case "drop":
		sd, notices := e.session(d)
		n := &tree.DropOperator{IfExists: d.HasArg("if-exists")}
		for _, l := range inputLines(d) {
			n.Operators = append(n.Operators, e.parseOperator(l))
		}
		err := e.exec.DropOperator(e.ctx, sd, n)
		return result(notices, "ok", err)

	case "remove":
		sd, notices := e.session(d)
		var id int
		d.ScanArgs(t, "id", &id)
		err := e.exec.RemoveOperatorByID(e.ctx, sd, oid.Oid(id))
		return result(notices, "ok", err)

	case "show":
		ops, err := e.exec.ListOperators(e.ctx)
		require.NoError(t, err)
		if len(ops) == 0 {
			return "<empty>"
		}
		var sb strings.Builder
		for _, op := range ops {
			fmt.Fprintf(&sb, "%d %s.%s(%s, %s) returns %s func=%s com=%s neg=%s rest=%s join=%s",
				op.ID, op.Schema, op.Name, op.Left, op.Right, op.Result, op.Function,
				op.Commutator, op.Negator, op.Restrict, op.Join)
			if op.Merges {
				sb.WriteString(" merges")
			}
			if op.Hashes {
				sb.WriteString(" hashes")
			}
			fmt.Fprintf(&sb, " owner=%s\n", op.Owner)
		}
		return sb.String()

	case "deps":
		var id int
		d.ScanArgs(t, "id", &id)
		var deps []oprdesc.Dependency
		require.NoError(t, e.store.Txn(e.ctx, func(ctx context.Context, txn oprstore.Txn) (err error) {
			deps, err = txn.GetDependencies(ctx, oid.Oid(id))
			return err
		}))
		if len(deps) == 0 {
			return "<none>"
		}
		var sb strings.Builder
		for _, dep := range deps {
			fmt.Fprintf(&sb, "%s %d\n", className(dep.ClassID), dep.ObjectID)
		}
		return sb.String()

	default:
		t.Fatalf("unknown command %q", d.Cmd)
		return ""
	}
}

func formatAddress(addr catalog.ObjectAddress) string {
	return "operator " + strconv.FormatUint(uint64(addr.ObjectID), 10)
}

func className(id oid.Oid) string {
	switch id {
	case catalog.TypeRelationID:
		return "type"
	case catalog.ProcRelationID:
		return "function"
	case catalog.NamespaceRelationID:
		return "schema"
	}
	return strconv.FormatUint(uint64(id), 10)
}

func TestDataDriven(t *testing.T) {
	defer log.Scope(t).Close(t)
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		e := newTestEnv(t)
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			return e.run(t, d)
		})
	})
}

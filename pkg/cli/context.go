// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/cli/exit"
	"github.com/cockroachdb/opercat/pkg/security/username"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/funccat"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/badgerkv"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/memkv"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore/pebblekv"
	"github.com/cockroachdb/opercat/pkg/sql/opercmds"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// engineType names the storage engine behind the operator relation.
type engineType string

const (
	engineMemory engineType = "memory"
	enginePebble engineType = "pebble"
	engineBadger engineType = "badger"
)

// Type implements the pflag.Value interface.
func (e *engineType) Type() string { return "string" }

// String implements the pflag.Value interface.
func (e *engineType) String() string { return string(*e) }

// Set implements the pflag.Value interface.
func (e *engineType) Set(s string) error {
	switch t := engineType(strings.ToLower(s)); t {
	case engineMemory, enginePebble, engineBadger:
		*e = t
		return nil
	}
	return errors.Newf("invalid storage engine: %s (possible values: memory, pebble, badger)", s)
}

func openStore(ctx context.Context) (oprstore.Store, error) {
	if cliCtx.engine != engineMemory && cliCtx.storeDir == "" {
		return nil, &cliError{
			exitCode: exit.CommandLineFlagError(),
			cause:    errors.Newf("--store is required with the %s engine", cliCtx.engine),
		}
	}
	switch cliCtx.engine {
	case enginePebble:
		return pebblekv.NewStore(ctx, cliCtx.storeDir)
	case engineBadger:
		return badgerkv.NewStore(ctx, cliCtx.storeDir)
	default:
		return memkv.NewStore(ctx), nil
	}
}

// env is everything a command needs to run statements.
type env struct {
	store    oprstore.Store
	cat      *funccat.Catalog
	grants   *privilege.Grants
	registry *prometheus.Registry
	exec     *opercmds.Executor
}

// newEnv opens the store and builds the catalog from the builtins and
// the --catalog seed. The seed must be the same on every run against a
// persistent store: operator rows refer to catalog objects by id.
func newEnv(ctx context.Context) (_ *env, retErr error) {
	cat, err := funccat.NewBuiltinCatalog()
	if err != nil {
		return nil, err
	}
	defer func() {
		if retErr != nil {
			cat.Close()
		}
	}()
	grants := privilege.NewGrants()
	if err := funccat.GrantBuiltinDefaults(grants); err != nil {
		return nil, err
	}
	if cliCtx.catalogFile != "" {
		if err := loadSeed(ctx, cliCtx.catalogFile, cat, grants); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	metrics, err := opercmds.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	exec, err := opercmds.NewExecutor(opercmds.Config{
		Store:      store,
		Schemas:    cat,
		Types:      cat,
		Functions:  cat,
		Authorizer: grants,
		Metrics:    metrics,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	log.VEventf(ctx, 1, "opened %s store", cliCtx.engine)
	return &env{store: store, cat: cat, grants: grants, registry: reg, exec: exec}, nil
}

func loadSeed(ctx context.Context, path string, cat *funccat.Catalog, g *privilege.Grants) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	seed, err := funccat.LoadSeed(f)
	if err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}
	return errors.Wrapf(seed.Apply(ctx, cat, g), "applying %s", path)
}

func (e *env) close() error {
	e.cat.Close()
	return e.store.Close()
}

// session returns the session data for a statement run as user, or as
// --user when user is empty.
func (e *env) session(user string) (*sessiondata.SessionData, error) {
	if user == "" {
		user = cliCtx.user
	}
	u, err := username.MakeSQLUsernameFromUserInput(user)
	if err != nil {
		return nil, err
	}
	sd := sessiondata.New(u)
	if cliCtx.searchPath != "" {
		sd.SearchPath = sessiondata.ParseSearchPath(cliCtx.searchPath)
	}
	return sd, nil
}

// printMetrics writes the non-zero statement counters to w, one per
// line, ordered by name.
func (e *env) printMetrics(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if v := m.GetCounter().GetValue(); v != 0 {
				lines = append(lines, formatMetric(mf.GetName(), m)+" "+fmt.Sprint(v))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

// formatMetric renders name{label="value",...} in the exposition
// format.
func formatMetric(name string, m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('{')
	for i, lp := range m.GetLabel() {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%q", lp.GetName(), lp.GetValue())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package opercmds implements the operator DDL: CREATE OPERATOR, ALTER
// OPERATOR ... SET and DROP OPERATOR, together with the upkeep of the
// commutator and negator links between operator rows.
package opercmds

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/catalog/oprstore"
	"github.com/cockroachdb/opercat/pkg/sql/funcresolve"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgnotice"
	"github.com/cockroachdb/opercat/pkg/sql/privilege"
	"github.com/cockroachdb/opercat/pkg/sql/sessiondata"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/cockroachdb/opercat/pkg/util/syncutil"
	"github.com/cockroachdb/opercat/pkg/util/timeutil"
	"github.com/lib/pq/oid"
)

// Config holds the collaborators of an Executor.
type Config struct {
	Store      oprstore.Store
	Schemas    catalog.SchemaResolver
	Types      catalog.TypeResolver
	Functions  catalog.FunctionResolver
	Authorizer privilege.Authorizer
	// Notices receives notices for sessions that carry no sender of
	// their own. It may be nil.
	Notices pgnotice.Sender
	// Metrics may be nil.
	Metrics *Metrics
}

func (cfg *Config) validate() error {
	switch {
	case cfg.Store == nil:
		return errors.AssertionFailedf("missing operator store")
	case cfg.Schemas == nil || cfg.Types == nil || cfg.Functions == nil:
		return errors.AssertionFailedf("missing catalog resolver")
	case cfg.Authorizer == nil:
		return errors.AssertionFailedf("missing authorizer")
	}
	return nil
}

// Executor runs operator DDL against a store.
type Executor struct {
	cfg Config
	// mu is the lock on the operator relation. It is held for the whole
	// of every mutating statement, validation included.
	mu syncutil.Mutex
	// slowLog throttles the warning for statements that held the lock
	// longer than slowStatementThreshold.
	slowLog *log.EveryN
}

const slowStatementThreshold = time.Second

// NewExecutor returns an Executor for cfg.
func NewExecutor(cfg Config) (*Executor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Executor{cfg: cfg, slowLog: log.Every(10 * time.Second)}, nil
}

// runParams carries the state of one statement.
type runParams struct {
	ctx      context.Context
	cfg      *Config
	sd       *sessiondata.SessionData
	txn      oprstore.Txn
	resolver *funcresolve.Resolver
}

// runInTxn takes the relation lock and runs fn in a store transaction.
// Any error rolls back everything fn wrote.
func (e *Executor) runInTxn(
	ctx context.Context, sd *sessiondata.SessionData, op string, fn func(p *runParams) error,
) error {
	ctx = logtags.AddTag(ctx, op, nil)
	ctx = logtags.AddTag(ctx, "user", sd.User.Normalized())
	e.mu.Lock()
	defer e.mu.Unlock()
	start := timeutil.Now()
	defer func() {
		if elapsed := timeutil.Since(start); elapsed > slowStatementThreshold && e.slowLog.ShouldLog() {
			log.Warningf(ctx, "%s held the operator relation lock for %s", op, elapsed)
		}
	}()
	return e.cfg.Store.Txn(ctx, func(ctx context.Context, txn oprstore.Txn) error {
		return fn(&runParams{
			ctx: ctx,
			cfg: &e.cfg,
			sd:  sd,
			txn: txn,
			resolver: &funcresolve.Resolver{
				Schemas:    e.cfg.Schemas,
				Types:      e.cfg.Types,
				Functions:  e.cfg.Functions,
				SearchPath: sd.SearchPath,
			},
		})
	})
}

// sendNotice delivers a notice to the session, falling back to the
// executor's sender.
func (p *runParams) sendNotice(n pgnotice.Notice) {
	switch {
	case p.sd.Notices != nil:
		p.sd.Notices.BufferClientNotice(p.ctx, n)
	case p.cfg.Notices != nil:
		p.cfg.Notices.BufferClientNotice(p.ctx, n)
	}
}

func (p *runParams) typeName(id oid.Oid) string {
	return catalog.TypeNameByID(p.ctx, p.cfg.Types, id)
}

// logError logs a failed statement at a verbosity that keeps routine
// user errors out of the default log.
func logError(ctx context.Context, op string, err error) {
	if errors.HasAssertionFailure(err) {
		log.Errorf(ctx, "%s: %+v", op, err)
		return
	}
	log.VEventf(ctx, 1, "%s failed: %v", op, err)
}

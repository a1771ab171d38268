// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/sql/opercmds"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list the operators of the store",
	Long: `
Lists every operator of the store, ordered by oid, with its argument
types, function, links and estimators rendered by name.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) (retErr error) {
		e, err := newEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { retErr = errors.CombineErrors(retErr, e.close()) }()
		return e.listOperators(cmd.Context(), cmd.OutOrStdout())
	},
}

func (e *env) listOperators(ctx context.Context, w io.Writer) error {
	ops, err := e.exec.ListOperators(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(ops))
	for i := range ops {
		rows[i] = ops[i].Row()
	}
	return printQueryOutput(w, opercmds.Columns, rows, cliCtx.tableDisplayFormat)
}

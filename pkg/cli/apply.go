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

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/opercat/pkg/cli/exit"
	"github.com/cockroachdb/opercat/pkg/sql/catalog"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/opercat/pkg/sql/pgwire/pgnotice"
	"github.com/cockroachdb/opercat/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "run a list of operator statements",
	Long: `
Runs the operator statements listed in a YAML file, or on stdin when no
file (or "-") is given. Each statement is one of:

  - create: [schema.]name
    with: [leftarg=int4, rightarg=int4, function=int4eq, hashes]
  - alter: name(int4, int4)
    set: [restrict=eqsel, join=none]
  - drop: ["name(int4, int4)", "other(none, int4)"]
    if_exists: true
  - remove: 16384

and may carry a user: that it runs as instead of --user. A failing
statement is rolled back and reported, and the remaining statements
still run.
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

// statement is one entry of an apply file.
type statement struct {
	Create   string   `yaml:"create"`
	With     []string `yaml:"with"`
	Alter    string   `yaml:"alter"`
	Set      []string `yaml:"set"`
	Drop     []string `yaml:"drop"`
	IfExists bool     `yaml:"if_exists"`
	Remove   uint32   `yaml:"remove"`
	User     string   `yaml:"user"`
}

func readStatements(r io.Reader) ([]statement, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var stmts []statement
	if err := dec.Decode(&stmts); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoding statements")
	}
	return stmts, nil
}

func parseDefList(elems []string) tree.DefList {
	l := make(tree.DefList, 0, len(elems))
	for _, s := range elems {
		l = append(l, tree.ParseDefElem(s))
	}
	return l
}

// parse turns the statement into its syntax tree, or into the id of a
// row to remove.
func (s *statement) parse() (tree.Statement, oid.Oid, error) {
	var n int
	for _, set := range []bool{s.Create != "", s.Alter != "", len(s.Drop) > 0, s.Remove != 0} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, 0, errors.New("statement must have exactly one of create, alter, drop or remove")
	}
	switch {
	case s.Create != "":
		return &tree.CreateOperator{
			Name:       tree.ParseObjectName(s.Create),
			Definition: parseDefList(s.With),
		}, 0, nil
	case s.Alter != "":
		o, err := tree.ParseOperatorWithArgs(s.Alter)
		if err != nil {
			return nil, 0, err
		}
		return &tree.AlterOperator{Operator: o, Options: parseDefList(s.Set)}, 0, nil
	case len(s.Drop) > 0:
		d := &tree.DropOperator{IfExists: s.IfExists}
		for _, str := range s.Drop {
			o, err := tree.ParseOperatorWithArgs(str)
			if err != nil {
				return nil, 0, err
			}
			d.Operators = append(d.Operators, o)
		}
		return d, 0, nil
	}
	return nil, oid.Oid(s.Remove), nil
}

func runApply(cmd *cobra.Command, args []string) (retErr error) {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	stmts, err := readStatements(in)
	if err != nil {
		return err
	}

	ctx := logtags.AddTag(cmd.Context(), "apply", nil)
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer func() { retErr = errors.CombineErrors(retErr, e.close()) }()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	var failed int
	for i := range stmts {
		if err := e.runStatement(logtags.AddTag(ctx, "stmt", i+1), &stmts[i], out, errOut); err != nil {
			fmt.Fprintln(errOut, pgerror.FullError(err))
			failed++
		}
	}

	if cliCtx.showOperators {
		if err := e.listOperators(ctx, out); err != nil {
			return err
		}
	}
	if cliCtx.printMetrics {
		if err := e.printMetrics(errOut); err != nil {
			return err
		}
	}
	if failed > 0 {
		return &cliError{
			exitCode: exit.StatementFailed(),
			cause:    errors.Newf("%d of %d statement%s failed", failed, len(stmts), pluralize(len(stmts))),
		}
	}
	return nil
}

// runStatement runs one statement and prints its notices followed by
// its command tag.
func (e *env) runStatement(ctx context.Context, s *statement, out, errOut io.Writer) error {
	stmt, id, err := s.parse()
	if err != nil {
		return err
	}
	sd, err := e.session(s.User)
	if err != nil {
		return err
	}
	notices := &pgnotice.Collector{}
	sd.Notices = notices

	var addr catalog.ObjectAddress
	switch n := stmt.(type) {
	case *tree.CreateOperator:
		addr, err = e.exec.DefineOperator(ctx, sd, n)
	case *tree.AlterOperator:
		addr, err = e.exec.AlterOperator(ctx, sd, n)
	case *tree.DropOperator:
		err = e.exec.DropOperator(ctx, sd, n)
	case nil:
		err = e.exec.RemoveOperatorByID(ctx, sd, id)
	default:
		return errors.AssertionFailedf("unhandled statement %T", stmt)
	}
	for _, n := range notices.Strings() {
		fmt.Fprintln(errOut, n)
	}
	if err != nil {
		return err
	}
	if stmt == nil {
		fmt.Fprintf(out, "REMOVE OPERATOR %d\n", id)
		return nil
	}
	if addr.ObjectID != catalog.InvalidOid {
		fmt.Fprintf(out, "%s %d\n", stmt.StatementTag(), addr.ObjectID)
	} else {
		fmt.Fprintln(out, stmt.StatementTag())
	}
	return nil
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/opercat/pkg/cli/exit"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/stretchr/testify/require"
)

// runCLI runs the command line args with stdin reading from input and
// returns everything written to stdout and stderr.
func runCLI(args []string, input string) (string, error) {
	var buf bytes.Buffer
	opercatCmd.SetIn(strings.NewReader(input))
	opercatCmd.SetOut(&buf)
	opercatCmd.SetErr(&buf)
	defer func() {
		opercatCmd.SetIn(nil)
		opercatCmd.SetOut(nil)
		opercatCmd.SetErr(nil)
	}()
	err := Run(args)
	return buf.String(), err
}

// TestCLI runs the files under testdata. The commands are:
//
//	file name=<name>   writes the input to <name> in the test directory.
//	opercat <args>     runs the binary with the input on stdin. $DIR in
//	                   args expands to the test directory.
func TestCLI(t *testing.T) {
	defer log.Scope(t).Close(t)
	defer func(prev bool) { isInteractive = prev }(isInteractive)
	isInteractive = false

	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		dir := t.TempDir()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "file":
				var name string
				d.ScanArgs(t, "name", &name)
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(d.Input), 0644))
				return ""

			case "opercat":
				args := make([]string, 0, len(d.CmdArgs))
				for _, a := range d.CmdArgs {
					args = append(args, strings.ReplaceAll(a.String(), "$DIR", dir))
				}
				out, err := runCLI(args, d.Input)
				if err != nil {
					out += fmt.Sprintf("error: %s (%s)\n", err, errorCode(err))
				}
				return out

			default:
				t.Fatalf("unknown command %q", d.Cmd)
				return ""
			}
		})
	})
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, exit.UnspecifiedError(), errorCode(os.ErrNotExist))
	err := fmt.Errorf("wrapped: %w", &cliError{exitCode: exit.StatementFailed(), cause: os.ErrClosed})
	require.Equal(t, exit.StatementFailed(), errorCode(err))
	require.Equal(t, 125, errorCode(err).Errno())
}

func TestReadStatements(t *testing.T) {
	stmts, err := readStatements(strings.NewReader(`
- create: "==="
  with: [leftarg=int4, rightarg=int4, function=int4eq]
- drop:
  - "===(int4, int4)"
  if_exists: true
- remove: 16384
  user: alice
`))
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	require.Equal(t, "===", stmts[0].Create)
	require.Equal(t, []string{"===(int4, int4)"}, stmts[1].Drop)
	require.True(t, stmts[1].IfExists)
	require.Equal(t, uint32(16384), stmts[2].Remove)
	require.Equal(t, "alice", stmts[2].User)

	stmts, err = readStatements(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, stmts)

	_, err = readStatements(strings.NewReader("- crate: x\n"))
	require.ErrorContains(t, err, "field crate not found")
}

func TestStatementParse(t *testing.T) {
	for _, tc := range []struct {
		s   statement
		tag string
		err string
	}{
		{s: statement{Create: "s.==="}, tag: "CREATE OPERATOR"},
		{s: statement{Alter: "===(int4, int4)", Set: []string{"restrict=eqsel"}}, tag: "ALTER OPERATOR"},
		{s: statement{Drop: []string{"===(none, int4)"}}, tag: "DROP OPERATOR"},
		{s: statement{Remove: 16384}},
		{s: statement{}, err: "exactly one of"},
		{s: statement{Create: "===", Remove: 1}, err: "exactly one of"},
		{s: statement{Alter: "==="}, err: "expected operator with argument types"},
	} {
		stmt, id, err := tc.s.parse()
		if tc.err != "" {
			require.ErrorContains(t, err, tc.err)
			continue
		}
		require.NoError(t, err)
		if tc.tag == "" {
			require.Nil(t, stmt)
			require.EqualValues(t, tc.s.Remove, id)
			continue
		}
		require.Equal(t, tc.tag, stmt.StatementTag())
	}
}

func TestTableDisplayFormat(t *testing.T) {
	var f tableDisplayFormat
	require.NoError(t, f.Set("csv"))
	require.Equal(t, tableDisplayCSV, f)
	require.Equal(t, "csv", f.String())
	require.Error(t, f.Set("html"))

	var buf bytes.Buffer
	rows := [][]string{{"1", "a, b"}}
	require.NoError(t, printQueryOutput(&buf, []string{"id", "v"}, rows, tableDisplayCSV))
	require.Equal(t, "1 row\nid,v\n1,\"a, b\"\n", buf.String())

	buf.Reset()
	require.NoError(t, printQueryOutput(&buf, []string{"id", "v"}, rows, tableDisplayPretty))
	require.Contains(t, buf.String(), "a, b")
	require.True(t, strings.HasSuffix(buf.String(), "(1 row)\n"))
}

func TestEnvVar(t *testing.T) {
	defer log.Scope(t).Close(t)
	t.Setenv("OPERCAT_ENGINE", "badger")
	t.Setenv("OPERCAT_STORE", filepath.Join(t.TempDir(), "badger"))

	out, err := runCLI([]string{"apply"}, `- create: "==="
  with: [leftarg=int4, rightarg=int4, function=int4eq]
`)
	require.NoError(t, err)
	require.Equal(t, "CREATE OPERATOR 16384\n", out)
	require.Equal(t, engineBadger, cliCtx.engine)

	t.Setenv("OPERCAT_ENGINE", "rocks")
	_, err = runCLI([]string{"list"}, "")
	require.ErrorContains(t, err, "invalid value for OPERCAT_ENGINE")
	require.Equal(t, exit.CommandLineFlagError(), errorCode(err))
}

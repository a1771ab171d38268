// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cli implements the opercat command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/cli/exit"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Main is the entry point for the cli, with a single line calling it
// intended to be the body of an action package main `main` func
// elsewhere.
func Main() {
	if err := Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		exit.WithCode(errorCode(err))
	}
	exit.WithCode(exit.Success())
}

var opercatCmd = &cobra.Command{
	Use:   "opercat [command] (flags)",
	Short: "operator catalog command-line interface",
	Long: `
Defines, alters and drops user operators in an operator catalog and
lists the result.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// isInteractive indicates whether both stdin and stdout refer to the
// terminal.
var isInteractive = isatty.IsTerminal(os.Stdout.Fd()) &&
	isatty.IsTerminal(os.Stdin.Fd())

func init() {
	cobra.EnableCommandSorting = false

	opercatCmd.AddCommand(
		applyCmd,
		listCmd,
	)
	opercatCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cliError{exitCode: exit.CommandLineFlagError(), cause: err}
	})
}

// Run runs the command line given by args.
func Run(args []string) error {
	initCLIDefaults()
	opercatCmd.SetArgs(args)
	return opercatCmd.ExecuteContext(context.Background())
}

// cliError carries the exit code a failure should terminate the
// process with.
type cliError struct {
	exitCode exit.Code
	cause    error
}

func (e *cliError) Error() string { return e.cause.Error() }
func (e *cliError) Unwrap() error { return e.cause }

func errorCode(err error) exit.Code {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.exitCode
	}
	return exit.UnspecifiedError()
}

// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/opercat/pkg/cli/cliflags"
	"github.com/cockroachdb/opercat/pkg/cli/exit"
	"github.com/cockroachdb/opercat/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliCtx holds the values of the command-line flags.
var cliCtx struct {
	storeDir           string
	engine             engineType
	catalogFile        string
	user               string
	searchPath         string
	tableDisplayFormat tableDisplayFormat
	showOperators      bool
	printMetrics       bool
	verbosity          int
}

// initCLIDefaults resets cliCtx and the state of every flag, so that
// Run can be called repeatedly in the same process.
func initCLIDefaults() {
	cliCtx.storeDir = ""
	cliCtx.engine = engineMemory
	cliCtx.catalogFile = ""
	cliCtx.user = "root"
	cliCtx.searchPath = ""
	cliCtx.tableDisplayFormat = tableDisplayUnset
	cliCtx.showOperators = false
	cliCtx.printMetrics = false
	cliCtx.verbosity = 0

	reset := func(f *pflag.Flag) { f.Changed = false }
	for _, cmd := range append([]*cobra.Command{opercatCmd}, opercatCmd.Commands()...) {
		cmd.Flags().VisitAll(reset)
		cmd.PersistentFlags().VisitAll(reset)
	}
}

// envFlags maps the flags that have an environment variable to it.
var envFlags = map[*pflag.Flag]string{}

func registerEnvVar(f *pflag.FlagSet, info cliflags.FlagInfo) {
	if info.EnvVar != "" {
		envFlags[f.Lookup(info.Name)] = info.EnvVar
	}
}

// StringFlag creates a string flag and registers it with the FlagSet.
func StringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(f, flagInfo)
}

// BoolFlag creates a bool flag and registers it with the FlagSet.
func BoolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(f, flagInfo)
}

// IntFlag creates an int flag and registers it with the FlagSet.
func IntFlag(f *pflag.FlagSet, valPtr *int, flagInfo cliflags.FlagInfo) {
	f.IntVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Usage())
	registerEnvVar(f, flagInfo)
}

// VarFlag creates a custom-variable flag and registers it with the FlagSet.
func VarFlag(f *pflag.FlagSet, value pflag.Value, flagInfo cliflags.FlagInfo) {
	f.VarP(value, flagInfo.Name, flagInfo.Shorthand, flagInfo.Usage())
	registerEnvVar(f, flagInfo)
}

// setFlagsFromEnv assigns the flags of cmd that were not given on the
// command line from their environment variables.
func setFlagsFromEnv(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVar, ok := envFlags[f]
		if !ok || f.Changed || err != nil {
			return
		}
		v, ok := os.LookupEnv(envVar)
		if !ok {
			return
		}
		if setErr := f.Value.Set(v); setErr != nil {
			err = &cliError{
				exitCode: exit.CommandLineFlagError(),
				cause:    errors.Wrapf(setErr, "invalid value for %s", envVar),
			}
		}
	})
	return err
}

func init() {
	initCLIDefaults()

	pf := opercatCmd.PersistentFlags()
	StringFlag(pf, &cliCtx.storeDir, cliflags.Store)
	VarFlag(pf, &cliCtx.engine, cliflags.Engine)
	StringFlag(pf, &cliCtx.catalogFile, cliflags.Catalog)
	StringFlag(pf, &cliCtx.user, cliflags.User)
	StringFlag(pf, &cliCtx.searchPath, cliflags.SearchPath)
	VarFlag(pf, &cliCtx.tableDisplayFormat, cliflags.TableDisplayFormat)
	BoolFlag(pf, &cliCtx.printMetrics, cliflags.Metrics)
	IntFlag(pf, &cliCtx.verbosity, cliflags.Verbosity)

	BoolFlag(applyCmd.Flags(), &cliCtx.showOperators, cliflags.Show)

	opercatCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := setFlagsFromEnv(cmd); err != nil {
			return err
		}
		if f := cmd.Flag(cliflags.Verbosity.Name); f != nil && f.Changed {
			log.SetVerbosity(int32(cliCtx.verbosity))
		}
		return nil
	}
}

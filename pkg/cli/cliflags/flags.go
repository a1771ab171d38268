// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package cliflags describes the command-line flags of the opercat
// binary.
package cliflags

import "strings"

// FlagInfo contains the static information for a CLI flag.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string

	// Shorthand is the short form of the flag (optional).
	Shorthand string

	// EnvVar is the name of the environment variable through which the
	// flag value can be controlled (optional).
	EnvVar string

	// Description of the flag.
	Description string
}

// Usage returns the usage string of the flag, with a reference to its
// environment variable when it has one.
func (f FlagInfo) Usage() string {
	s := strings.TrimSpace(f.Description)
	if f.EnvVar != "" {
		s += "\nEnvironment variable: " + f.EnvVar
	}
	return s
}

var (
	Store = FlagInfo{
		Name:   "store",
		EnvVar: "OPERCAT_STORE",
		Description: `
Directory of the operator store. Ignored by the memory engine.`,
	}

	Engine = FlagInfo{
		Name:   "engine",
		EnvVar: "OPERCAT_ENGINE",
		Description: `
Storage engine holding the operator relation: memory, pebble or badger.`,
	}

	Catalog = FlagInfo{
		Name:   "catalog",
		EnvVar: "OPERCAT_CATALOG",
		Description: `
YAML file of schemas, types, functions, roles and grants added to the
builtin catalog before any statement runs.`,
	}

	User = FlagInfo{
		Name:        "user",
		Shorthand:   "u",
		EnvVar:      "OPERCAT_USER",
		Description: `Database user the statements run as.`,
	}

	SearchPath = FlagInfo{
		Name:   "search-path",
		EnvVar: "OPERCAT_SEARCH_PATH",
		Description: `
Comma-separated list of schemas in which unqualified names are
resolved.`,
	}

	TableDisplayFormat = FlagInfo{
		Name: "format",
		Description: `
Selects how to display table rows. Possible values: tsv, csv, pretty.
Defaults to pretty when stdout and stdin are a terminal, tsv otherwise.`,
	}

	Show = FlagInfo{
		Name:        "show",
		Description: `List the operators after the statements have run.`,
	}

	Metrics = FlagInfo{
		Name:        "metrics",
		Description: `Print the statement counters to stderr on exit.`,
	}

	Verbosity = FlagInfo{
		Name:        "verbosity",
		Shorthand:   "v",
		Description: `Verbosity of the log messages written to stderr.`,
	}
)

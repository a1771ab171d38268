// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
)

// tableDisplayFormat identifies how rows are displayed.
type tableDisplayFormat int

const (
	// tableDisplayUnset means the format is chosen from isInteractive.
	tableDisplayUnset tableDisplayFormat = iota
	tableDisplayTSV
	tableDisplayCSV
	tableDisplayPretty
)

var tableDisplayNames = map[tableDisplayFormat]string{
	tableDisplayTSV:    "tsv",
	tableDisplayCSV:    "csv",
	tableDisplayPretty: "pretty",
}

// Type implements the pflag.Value interface.
func (f *tableDisplayFormat) Type() string { return "string" }

// String implements the pflag.Value interface.
func (f *tableDisplayFormat) String() string { return tableDisplayNames[*f] }

// Set implements the pflag.Value interface.
func (f *tableDisplayFormat) Set(s string) error {
	for k, name := range tableDisplayNames {
		if s == name {
			*f = k
			return nil
		}
	}
	return errors.Newf("invalid table display format: %s "+
		"(possible values: tsv, csv, pretty)", s)
}

// resolve returns the effective format.
func (f tableDisplayFormat) resolve() tableDisplayFormat {
	if f != tableDisplayUnset {
		return f
	}
	if isInteractive {
		return tableDisplayPretty
	}
	return tableDisplayTSV
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// expandTabsAndNewLines ensures that multi-line row strings that may
// contain tabs are properly formatted: tabs are expanded to spaces,
// and newlines are escaped.
func expandTabsAndNewLines(s string) string {
	return strings.NewReplacer("\t", "  ", "\n", `\n`).Replace(s)
}

// printQueryOutput renders rows under the column headers cols.
func printQueryOutput(
	w io.Writer, cols []string, rows [][]string, displayFormat tableDisplayFormat,
) error {
	switch displayFormat.resolve() {
	case tableDisplayPretty:
		// Initialize tablewriter and set column names as the header row.
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(cols)
		for _, row := range rows {
			r := make([]string, len(row))
			for i, s := range row {
				r[i] = expandTabsAndNewLines(s)
			}
			table.Append(r)
		}
		table.Render()
		fmt.Fprintf(w, "(%d row%s)\n", len(rows), pluralize(len(rows)))

	case tableDisplayTSV, tableDisplayCSV:
		fmt.Fprintf(w, "%d row%s\n", len(rows), pluralize(len(rows)))
		csvWriter := csv.NewWriter(w)
		if displayFormat.resolve() == tableDisplayTSV {
			csvWriter.Comma = '\t'
		}
		if err := csvWriter.Write(cols); err != nil {
			return err
		}
		return csvWriter.WriteAll(rows)

	default:
		return errors.AssertionFailedf("unhandled display format %d", displayFormat)
	}
	return nil
}

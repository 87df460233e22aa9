// Copyright (C) 2026 Bandit Labs (eng@banditlabs.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func printOK(format string, args ...any) {
	okColor.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func printFail(format string, args ...any) {
	failColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func printNote(format string, args ...any) {
	dimColor.Fprintf(os.Stdout, format+"\n", args...)
}

// newTable returns a tabwriter for aligned column output. Callers must
// Flush it.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// fatal prints a red error line and exits nonzero.
func fatal(err error) {
	printFail("%v", err)
	os.Exit(1)
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

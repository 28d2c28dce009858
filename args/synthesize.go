// Package args synthesizes the embedded engine's command-line invocation
// from caller-supplied overrides and a verbosity flag, or splits a raw
// command string verbatim when the caller wants full control.
package args

import (
	"fmt"
	"strings"

	"github.com/printforge/slicerun/core"
)

// Synthesize builds the engine argument vector. The baseline references the
// staged printer definition and the fixed transient model paths; verbosity
// adds -v; each override appends its setting flags in caller order, scoped
// with -e<i> when targeting a single extruder.
func Synthesize(overrides []core.Override, verbose bool) []string {
	argv := []string{"slice", "-j", core.PrinterDefinitionPath}
	if verbose {
		argv = append(argv, "-v")
	}
	for _, o := range overrides {
		if o.Extruder != nil {
			argv = append(argv, fmt.Sprintf("-e%d", *o.Extruder))
		}
		argv = append(argv, "-s", o.Key+"="+o.Value)
	}
	return append(argv, "-o", core.OutputPath, "-l", core.InputPath)
}

// SplitCommand splits a raw caller-supplied command string into an argument
// vector on whitespace, bypassing override and verbosity synthesis entirely.
func SplitCommand(command string) []string {
	return strings.Fields(command)
}

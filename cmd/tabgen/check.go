package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tabgen/internal/diagnostic"
	"tabgen/internal/export"
	"tabgen/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [inputs...]",
	Short: "Build every sheet without writing, and report problems",
	Long: `Build every sheet and print its diagnostics. Nothing is written.

Exits non-zero when any sheet fails to build.

Examples:
  tabgen check
  tabgen check sheets/item.csv --verbose`,
	RunE: runCheck,
}

var checkVerbose bool

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "also print coercion notes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Inputs = args
	}

	runner := pipeline.New(cfg, export.NewRegistry(), logger)

	rep, err := runner.Check(cmd.Context())
	if rep != nil {
		printNotes(cmd, rep, checkVerbose)
	}

	out := cmd.OutOrStdout()

	if err != nil {
		for _, e := range unjoin(err) {
			fmt.Fprintf(out, "  %s %s\n", crossMark, e)
		}

		return fmt.Errorf("check failed: %d of %d sheets built", len(rep.Structs), len(rep.Sheets))
	}

	for _, s := range rep.Structs {
		fmt.Fprintf(out, "  %s %s (%d fields, %d rows)\n", checkMark, s.Name, len(s.EnabledColumns()), len(s.DataRows))
	}

	return nil
}

const (
	checkMark = "✓"
	crossMark = "✗"
)

// printNotes prints the non-fatal diagnostics of a run; infos only when
// verbose.
func printNotes(cmd *cobra.Command, rep *pipeline.Report, verbose bool) {
	for _, d := range rep.Diagnostics.All() {
		if d.Severity == diagnostic.DiagnosticInfo && !verbose {
			continue
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", d.Severity, d)
	}
}

// unjoin flattens an error built with errors.Join.
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}

	return []error{err}
}

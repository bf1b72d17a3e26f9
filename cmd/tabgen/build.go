package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tabgen/internal/composite"
	"tabgen/internal/export"
	"tabgen/internal/meta"
	"tabgen/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [inputs...]",
	Short: "Build every sheet and write the configured formats",
	Long: `Build every sheet found in the inputs and write the results.

Inputs are CSV files or directories searched recursively; they default to
the inputs of the config file. Nothing is written when any sheet fails.

Examples:
  tabgen build
  tabgen build sheets/ --format json,sqlite --out gen
  tabgen build --watch`,
	RunE: runBuild,
}

var (
	buildFormats  []string
	buildOutDir   string
	buildJobs     int
	buildDialect  string
	buildHideKV   bool
	buildWatch    bool
	buildListFmts bool
	buildDatabase string
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringSliceVarP(&buildFormats, "format", "f", nil, "output formats (csv, json, yaml, sqlite)")
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "output directory")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "sheets built concurrently (0 = unbounded)")
	buildCmd.Flags().StringVar(&buildDialect, "dialect", "", "composite type syntax (auto, suffix, prefix)")
	buildCmd.Flags().BoolVar(&buildHideKV, "hide-kv-columns", false, "blank type and comment columns of KV tables")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild when inputs change")
	buildCmd.Flags().BoolVar(&buildListFmts, "list-formats", false, "list output formats and exit")
	buildCmd.Flags().StringVar(&buildDatabase, "database", "", "SQLite file name inside the output directory")
}

func runBuild(cmd *cobra.Command, args []string) error {
	registry := export.NewDefaultRegistry()

	if buildListFmts {
		for _, name := range registry.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	}

	if err := applyBuildFlags(cmd, args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.New(cfg, registry, logger)

	if buildWatch {
		return runner.Watch(ctx)
	}

	rep, err := runner.Run(ctx)
	if rep != nil {
		printNotes(cmd, rep, false)
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d sheets built, %d files changed\n", len(rep.Structs), len(rep.Written))

	return nil
}

// applyBuildFlags overrides config values with the flags that were set.
func applyBuildFlags(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Inputs = args
	}

	flags := cmd.Flags()

	if flags.Changed("format") {
		cfg.Formats = buildFormats
	}

	if buildOutDir != "" {
		cfg.OutDir = buildOutDir
	}

	if flags.Changed("jobs") {
		cfg.Jobs = buildJobs
	}

	if buildDatabase != "" {
		cfg.Database = buildDatabase
	}

	if flags.Changed("hide-kv-columns") {
		cfg.HideKVColumns = buildHideKV
	}

	if buildDialect != "" {
		if _, err := composite.ParseDialect(buildDialect); err != nil {
			return err
		}

		if cfg.Directives == nil {
			cfg.Directives = make(map[string]string)
		}

		cfg.Directives[meta.KeyTypeDialect] = buildDialect
	}

	return cfg.Validate()
}

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tabgen/internal/config"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Set by loadConfig before any subcommand runs.
	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tabgen",
	Short: "Build typed schemas and data from spreadsheet exports",
	Long: `tabgen turns CSV sheets into typed struct descriptors and data.

The first rows of a sheet name the fields, give their types and comments;
the remaining rows are data. Per-sheet directives live in <sheet>.meta.yaml.

Quick start:
  tabgen init       # write a default tabgen.yaml
  tabgen check      # build every sheet and report problems
  tabgen build      # build and write the configured formats`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger, err = newLogger(cfg.Logging, cmd.ErrOrStderr())

	return err
}

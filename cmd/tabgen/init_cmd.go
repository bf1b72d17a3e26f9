package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tabgen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write tabgen.yaml (or the --config path) with every default spelled out.

An existing file is kept unless --force is given.`,
	// the config file may not exist yet
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", cfgFile)
	}

	if err := config.WriteFile(config.DefaultConfig(), cfgFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgFile)

	return nil
}

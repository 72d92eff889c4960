package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "skywatch",
	Short: "Skywatch - scheduled acquisition and retention daemon",
	Long: `Skywatch acquires time-indexed artifacts on a fixed wall-clock cadence
and retains them under explicit storage policies.

It runs independent acquisition loops:
  - Remote imagery tiles fetched over HTTP into a latest-snapshot store
  - Local camera frames captured by an external command into a rolling
    store with count-based, pin-exempt retention

Each loop wakes on interval boundaries (10:00, 10:15, ...), respects an
optional UTC-hour acquisition window, and swallows every per-cycle error
so a failed acquisition never disturbs the cadence or a stored artifact.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

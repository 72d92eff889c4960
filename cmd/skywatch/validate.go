package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stratus-hq/skywatch/pkg/cli"
	"stratus-hq/skywatch/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load and validate the configuration without starting the daemon.

Validation applies defaults and environment variable overrides, then checks
every field: the tile locator's placeholders, intervals, acquisition windows,
store directories, the sweep schedule, and the telemetry settings. All
problems are reported together.

Examples:
  # Validate the default config
  skywatch validate

  # Validate a specific file
  skywatch validate --config /etc/skywatch/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ %s is invalid:\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return cli.NewConfigError("", fmt.Sprintf("%d validation errors", len(verr.Errors)))
		}
		return cli.NewConfigError("", err.Error())
	}

	fmt.Printf("✓ %s is valid\n", cfgFile)
	printPlan(cfg)
	return nil
}

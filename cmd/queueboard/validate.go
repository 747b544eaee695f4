package main

import (
	"fmt"

	"github.com/jpalmerr/queueboard/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a QueueBoard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  queueboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:   %s\n", cfg.Title)
	fmt.Fprintf(out, "  Port:    %d\n", cfg.Port)
	fmt.Fprintf(out, "  Servers: %d\n", cfg.Servers)
	fmt.Fprintf(out, "  Logging: %s (%s)\n", cfg.LogLevel, cfg.LogFormat)

	if d := cfg.Driver; d != nil {
		fmt.Fprintf(out, "  Driver:  %s, λ=%g/min μ=%g/min every %s\n",
			d.URL, d.ArrivalRate, d.ServiceRate, d.Tick.Duration())
	} else {
		fmt.Fprintf(out, "  Driver:  not configured\n")
	}

	return nil
}

// Package main is the entry point for the queueboard CLI.
//
// QueueBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	queueboard serve -c config.yaml    # Start the dashboard
//	queueboard drive -c config.yaml    # Generate traffic against a server
//	queueboard validate -c config.yaml # Validate configuration
//	queueboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "queueboard",
	Short: "A live multi-server queue simulator",
	Long: `QueueBoard is a live multi-server queue simulator with a web dashboard.

Customers arrive, wait in one FIFO queue, are served by one of N servers
and leave. Every action comes from a client; time is read from the wall
clock. The summary reports standard M/M/c estimates over completed customers.

Quick start:
  1. Create a config file (queueboard.yaml)
  2. Run: queueboard serve -c queueboard.yaml
  3. Open http://localhost:8080 in your browser
  4. Optionally run: queueboard drive -c queueboard.yaml

Example config:
  port: 8080
  servers: 3
  driver:
    arrival_rate: 6
    service_rate: 2
    duration: 10m`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this queueboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "queueboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

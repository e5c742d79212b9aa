package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fabian-RY/rsat-code/cmd/peak-footprints/commands"
	"github.com/Fabian-RY/rsat-code/logger"
)

var rootCmd = &cobra.Command{
	Use:   "peak-footprints",
	Short: "Pipeline execution engine for peak-footprints analyses",
	Long: `peak-footprints - pipeline execution engine.

Runs XML-defined analysis pipelines: each pipeline is a DAG of components,
verified against the processor registry before execution and scheduled
depth-first over its dependency edges. Requests go through a persisted run
queue, so a restarted server picks up exactly where it stopped.

Available commands:
  run    - Execute a pipeline definition file and wait for completion
  serve  - Run as a daemon, watching a drop directory for definitions
  submit - Append a definition file to the run queue without executing
  queue  - List the pending run queue entries

Examples:
  peak-footprints run analysis.xml          # Run one batch to completion
  peak-footprints run --resume analysis.xml # Reuse existing outputs
  peak-footprints serve                     # Start the server loop
  peak-footprints queue                     # Inspect pending entries`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(verbosity, jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v",
		"Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json-logs", false,
		"Emit structured JSON logs instead of console output")
	rootCmd.PersistentFlags().String("config", "",
		"Path to manager.toml (defaults to the install directory)")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.SubmitCmd)
	rootCmd.AddCommand(commands.QueueCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

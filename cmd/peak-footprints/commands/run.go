package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Fabian-RY/rsat-code/errors"
)

// RunCmd executes one pipeline definition file to completion.
var RunCmd = &cobra.Command{
	Use:   "run <definition.xml>",
	Short: "Execute a pipeline definition file and wait for completion",
	Long: `Execute every pipeline declared in a definition file.

The request is appended to the persisted run queue, then the queue is
drained: any entries left over from an interrupted server run execute first,
in FIFO order. The command fails if any pipeline ends in a state other than
FINISHED.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetBool("resume")
		workingDir, _ := cmd.Flags().GetString("working-dir")

		m, err := newManager(cmd)
		if err != nil {
			return err
		}

		finished, err := m.Execute(cmd.Context(), args[0], resume, verbosity(cmd), workingDir)
		if err != nil {
			return err
		}
		if !finished {
			pterm.Warning.Println("At least one pipeline did not finish cleanly, check the pipeline logs")
			return errors.ExecutionErrorf("batch finished with failures")
		}
		pterm.Success.Println("All pipelines finished")
		return nil
	},
}

func init() {
	RunCmd.Flags().Bool("resume", false,
		"Reuse existing component outputs instead of wiping them")
	RunCmd.Flags().String("working-dir", "",
		"Override the configured base output directory for this batch")
}

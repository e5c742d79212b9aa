package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SubmitCmd appends a definition file to the run queue without executing.
var SubmitCmd = &cobra.Command{
	Use:   "submit <definition.xml>",
	Short: "Append a definition file to the run queue without executing",
	Long: `Append a pipeline definition file to the persisted run queue.

The entry is durable before the command returns: a server started later (or
already running against the same queue file) will pick it up in FIFO order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetBool("resume")
		workingDir, _ := cmd.Flags().GetString("working-dir")

		m, err := newManager(cmd)
		if err != nil {
			return err
		}
		if err := m.Submit(args[0], resume, verbosity(cmd), workingDir); err != nil {
			return err
		}
		pterm.Success.Printfln("Queued %s (%d entries pending)", args[0], m.Queue().Len())
		return nil
	},
}

func init() {
	SubmitCmd.Flags().Bool("resume", false,
		"Reuse existing component outputs instead of wiping them")
	SubmitCmd.Flags().String("working-dir", "",
		"Override the configured base output directory for this batch")
}

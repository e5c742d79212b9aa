package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// QueueCmd lists the pending run queue entries.
var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List the pending run queue entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd)
		if err != nil {
			return err
		}

		entries := m.Queue().Entries()
		if len(entries) == 0 {
			pterm.Info.Println("Run queue is empty")
			return nil
		}

		rows := pterm.TableData{
			{"#", "Definition", "Resume", "Verbosity", "Working dir"},
		}
		for i, entry := range entries {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				entry.DefinitionPath,
				strconv.FormatBool(entry.Resume),
				strconv.Itoa(entry.Verbosity),
				entry.WorkingDir,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

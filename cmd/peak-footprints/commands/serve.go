package commands

import (
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ServeCmd runs the engine as a long-lived daemon.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a daemon, watching a drop directory for definitions",
	Long: `Run the engine in server mode.

The server watches the configured listening directory: any *.xml definition
file dropped there is moved to its treated/ subdirectory and appended to the
run queue. The queue is drained in FIFO order, polling for new entries when
empty. Interrupt with Ctrl+C; queued entries survive the restart.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pterm.Info.Println("Server running, press Ctrl+C to stop")
		if err := m.Server(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		pterm.Info.Println("Server stopped")
		return nil
	},
}

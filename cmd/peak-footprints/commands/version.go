package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the engine release identifier.
const Version = "1.0.2"

// VersionCmd prints the engine version.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("peak-footprints %s\n", Version)
	},
}

// Package commands implements the peak-footprints CLI subcommands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Fabian-RY/rsat-code/config"
	"github.com/Fabian-RY/rsat-code/manager"
	"github.com/Fabian-RY/rsat-code/processor"
	"github.com/Fabian-RY/rsat-code/processors"
)

// newManager loads the engine configuration, registers the built-in
// processors and opens the run queue.
func newManager(cmd *cobra.Command) (*manager.Manager, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	registry := processor.NewRegistry()
	processors.Register(registry, cfg)
	return manager.New(cfg, registry)
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}

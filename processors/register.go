package processors

import (
	"time"

	"github.com/Fabian-RY/rsat-code/config"
	"github.com/Fabian-RY/rsat-code/processor"
)

// Register adds every built-in processor to the registry, configured from
// the engine parameters.
func Register(reg *processor.Registry, cfg *config.Config) {
	reg.Register(NewBEDParser())
	reg.Register(NewMotifScan(
		cfg.CompareMatricesPath,
		time.Duration(cfg.PoolCheckDelaySeconds)*time.Second,
		cfg.FileStabilityRetries,
	))
	reg.Register(NewBEDOutput())
}

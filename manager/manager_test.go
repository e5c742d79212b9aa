package manager

import (
	"path/filepath"

	"github.com/Fabian-RY/rsat-code/config"
)

func testConfig(installDir string) *config.Config {
	return &config.Config{
		InstallDir:            installDir,
		RSATDir:               installDir,
		BaseOutputDir:         filepath.Join(installDir, "out"),
		ListeningDir:          filepath.Join(installDir, "listen"),
		ServerPollSeconds:     1,
		PoolCheckDelaySeconds: 1,
		FileStabilityRetries:  3,
	}
}

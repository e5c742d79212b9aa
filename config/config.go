// Package config loads the engine configuration from the install directory.
//
// The install directory is resolved from the environment: when the project is
// installed inside an RSAT tree the $RSAT variable points at it, otherwise
// $PEAK_FOOTPRINTS names a standalone install, and as a last resort the
// current working directory is used. The directory must contain a
// manager.toml file with the engine parameters.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Fabian-RY/rsat-code/errors"
)

const (
	// RSATPathEnvVar points at the root of an RSAT installation.
	RSATPathEnvVar = "RSAT"
	// InstallPathEnvVar points at a standalone install of the project.
	InstallPathEnvVar = "PEAK_FOOTPRINTS"
	// ProjectPathInRSAT is the project location inside an RSAT tree.
	ProjectPathInRSAT = "contrib/peak-footprints"

	// ConfigFileName is the engine parameter file inside the install dir.
	ConfigFileName = "manager.toml"
	// QueueFileName is the persisted server queue inside the install dir.
	QueueFileName = "serverQueue.txt"
	// OutputDirName is the per-batch results directory under BaseOutputDir.
	OutputDirName = "results"
)

// Config holds the engine parameters read from manager.toml. Relative
// BaseOutputDir and ListeningDir are resolved against RSATDir, matching the
// original install layout.
type Config struct {
	// InstallDir is resolved from the environment, not from the file.
	InstallDir string `mapstructure:"-"`

	RSATDir       string `mapstructure:"rsat_dir"`
	BaseOutputDir string `mapstructure:"base_output_dir"`
	ListeningDir  string `mapstructure:"listening_dir"`

	// ServerPollSeconds is how long the server loop sleeps while the run
	// queue is empty.
	ServerPollSeconds int `mapstructure:"server_poll_seconds"`

	// PoolCheckDelaySeconds is the worker pool liveness poll interval.
	PoolCheckDelaySeconds int `mapstructure:"pool_check_delay_seconds"`

	// FileStabilityRetries bounds both phases of the result-file stability
	// check (existence polling, then constant-size polling).
	FileStabilityRetries int `mapstructure:"file_stability_retries"`

	// CompareMatricesPath is the external motif comparison tool invoked by
	// the MotifScan processor. Relative paths resolve against RSATDir.
	CompareMatricesPath string `mapstructure:"compare_matrices_path"`
}

// ResolveInstallDir determines the install directory from the environment.
func ResolveInstallDir() string {
	if rsat := os.Getenv(RSATPathEnvVar); rsat != "" {
		candidate := filepath.Join(rsat, ProjectPathInRSAT)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if install := os.Getenv(InstallPathEnvVar); install != "" {
		return install
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// Load resolves the install directory and reads manager.toml from it.
func Load() (*Config, error) {
	installDir := ResolveInstallDir()
	return LoadFromFile(filepath.Join(installDir, ConfigFileName))
}

// LoadFromFile reads the configuration from a specific file path. The file's
// directory becomes the install directory.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapConfig(err, "unable to read engine parameters")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfig(err, "unable to unmarshal engine parameters")
	}
	cfg.InstallDir = filepath.Dir(configPath)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.resolvePaths()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_poll_seconds", 5)
	v.SetDefault("pool_check_delay_seconds", 2)
	v.SetDefault("file_stability_retries", 5)
	v.SetDefault("base_output_dir", "peak-footprints-output")
	v.SetDefault("listening_dir", "peak-footprints-listener")
	v.SetDefault("compare_matrices_path", "perl-scripts/compare-matrices")
}

func (c *Config) validate() error {
	if c.RSATDir == "" {
		return errors.ConfigErrorf("parameter 'rsat_dir' is not set in %s", ConfigFileName)
	}
	if c.ServerPollSeconds <= 0 {
		return errors.ConfigErrorf("parameter 'server_poll_seconds' must be positive, got %d", c.ServerPollSeconds)
	}
	if c.PoolCheckDelaySeconds <= 0 {
		return errors.ConfigErrorf("parameter 'pool_check_delay_seconds' must be positive, got %d", c.PoolCheckDelaySeconds)
	}
	if c.FileStabilityRetries <= 0 {
		return errors.ConfigErrorf("parameter 'file_stability_retries' must be positive, got %d", c.FileStabilityRetries)
	}
	return nil
}

// resolvePaths anchors relative directories against the RSAT installation.
func (c *Config) resolvePaths() {
	if !filepath.IsAbs(c.BaseOutputDir) {
		c.BaseOutputDir = filepath.Join(c.RSATDir, c.BaseOutputDir)
	}
	if !filepath.IsAbs(c.ListeningDir) {
		c.ListeningDir = filepath.Join(c.RSATDir, c.ListeningDir)
	}
	if !filepath.IsAbs(c.CompareMatricesPath) {
		c.CompareMatricesPath = filepath.Join(c.RSATDir, c.CompareMatricesPath)
	}
}

// QueueFilePath is the location of the persisted run queue.
func (c *Config) QueueFilePath() string {
	return filepath.Join(c.InstallDir, QueueFileName)
}

// OutputDir is the batch results directory under the base output dir.
func (c *Config) OutputDir() string {
	return filepath.Join(c.BaseOutputDir, OutputDirName)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fabian-RY/rsat-code/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
rsat_dir = "/opt/rsat"
base_output_dir = "pf-output"
listening_dir = "/var/spool/pf"
server_poll_seconds = 3
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.InstallDir)
	assert.Equal(t, "/opt/rsat", cfg.RSATDir)
	assert.Equal(t, filepath.Join("/opt/rsat", "pf-output"), cfg.BaseOutputDir)
	assert.Equal(t, "/var/spool/pf", cfg.ListeningDir, "absolute paths stay as-is")
	assert.Equal(t, 3, cfg.ServerPollSeconds)

	// Defaults fill in what the file omits.
	assert.Equal(t, 2, cfg.PoolCheckDelaySeconds)
	assert.Equal(t, 5, cfg.FileStabilityRetries)

	assert.Equal(t, filepath.Join(dir, QueueFileName), cfg.QueueFilePath())
	assert.Equal(t, filepath.Join(cfg.BaseOutputDir, OutputDirName), cfg.OutputDir())
}

func TestLoadMissingFileIsConfigError(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), ConfigFileName))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestLoadMissingRSATDirIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `base_output_dir = "out"`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestResolveInstallDirPrefersRSAT(t *testing.T) {
	rsat := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(rsat, ProjectPathInRSAT), 0o755))
	t.Setenv(RSATPathEnvVar, rsat)
	t.Setenv(InstallPathEnvVar, "/elsewhere")

	assert.Equal(t, filepath.Join(rsat, ProjectPathInRSAT), ResolveInstallDir())
}

func TestResolveInstallDirFallsBackToInstallVar(t *testing.T) {
	t.Setenv(RSATPathEnvVar, filepath.Join(t.TempDir(), "missing"))
	t.Setenv(InstallPathEnvVar, "/standalone/install")

	assert.Equal(t, "/standalone/install", ResolveInstallDir())
}

package boxconfig_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := boxconfig.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
}

func TestLoadConfigEmptyPathFails(t *testing.T) {
	_, err := boxconfig.LoadConfig("")
	assert.ErrorIs(t, err, boxconfig.ErrEmptyConfigPath)
}

func TestLoadConfigFromReaderAppliesOverrides(t *testing.T) {
	yamlDoc := `
settings:
  server_url: https://vagrantcloud.example.com
  log_level: debug
  output_format: json
`
	cfg, err := boxconfig.LoadConfigFromReader(strings.NewReader(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, "https://vagrantcloud.example.com", cfg.Settings.ServerURL)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "json", cfg.Settings.OutputFormat)
}

func TestLoadConfigFromReaderRejectsBadOutputFormat(t *testing.T) {
	_, err := boxconfig.LoadConfigFromReader(strings.NewReader("settings:\n  output_format: xml\n"))
	assert.ErrorIs(t, err, boxconfig.ErrConfigValidate)
}

func TestLoadConfigFromReaderRejectsMalformedYAML(t *testing.T) {
	_, err := boxconfig.LoadConfigFromReader(strings.NewReader("not: [valid: yaml"))
	assert.ErrorIs(t, err, boxconfig.ErrConfigParse)
}

func TestSaveConfigRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := boxconfig.DefaultConfig()
	cfg.Settings.ServerURL = "https://vagrantcloud.example.com"

	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := boxconfig.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://vagrantcloud.example.com", loaded.Settings.ServerURL)
}

func TestSaveConfigEmptyPathFails(t *testing.T) {
	cfg := boxconfig.DefaultConfig()
	assert.ErrorIs(t, cfg.SaveConfig(""), boxconfig.ErrEmptyConfigPath)
}

func TestToYAMLRoundTrips(t *testing.T) {
	cfg := boxconfig.DefaultConfig()
	data, err := cfg.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "output_format")
}

func TestSaveConfigDoesNotLeaveTempFileOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.Mkdir(path, 0o755))
	cfg := boxconfig.DefaultConfig()
	assert.Error(t, cfg.SaveConfig(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

package boxcli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cperrin88/boxkeep/internal/boxcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigPath(t *testing.T, path string) {
	t.Helper()
	boxcli.ConfigPath = &path
	t.Cleanup(func() { boxcli.ConfigPath = nil })
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestConfigInitWritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	withConfigPath(t, path)

	cmd := boxcli.NewConfigCmd()
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestConfigInitRefusesToOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	withConfigPath(t, path)
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  output_format: text\n"), 0o644))

	cmd := boxcli.NewConfigCmd()
	cmd.SetArgs([]string{"init"})
	assert.Error(t, cmd.Execute())
}

func TestConfigShowPrintsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	withConfigPath(t, path)

	cmd := boxcli.NewConfigCmd()
	cmd.SetArgs([]string{"show"})

	out := captureStdout(t, func() {
		require.NoError(t, cmd.Execute())
	})
	assert.Contains(t, out, "output_format")
}

func TestCacheListReportsEmptyCollection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	collectionDir := filepath.Join(t.TempDir(), "collection")
	require.NoError(t, os.WriteFile(configPath,
		[]byte("settings:\n  collection_dir: "+collectionDir+"\n  log_level: error\n"), 0o644))
	withConfigPath(t, configPath)

	cmd := boxcli.NewCacheCmd()
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())
}

func TestCacheDirPrintsConfiguredDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	collectionDir := filepath.Join(t.TempDir(), "collection")
	require.NoError(t, os.WriteFile(configPath,
		[]byte("settings:\n  collection_dir: "+collectionDir+"\n  log_level: error\n"), 0o644))
	withConfigPath(t, configPath)

	cmd := boxcli.NewCacheCmd()
	cmd.SetArgs([]string{"dir"})

	out := captureStdout(t, func() {
		require.NoError(t, cmd.Execute())
	})
	assert.Contains(t, out, collectionDir)
}

func TestAddRequiresAtLeastOneURL(t *testing.T) {
	cmd := boxcli.NewAddCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

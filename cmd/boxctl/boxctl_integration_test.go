//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxarchive"
	"github.com/cperrin88/boxkeep/test/testutil"
	"github.com/stretchr/testify/require"
)

func fixtureArchive(t *testing.T) []byte {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "source")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "metadata.json"), []byte(`{"name":"test"}`), 0o644))

	archivePath := filepath.Join(root, "box.tar.gz")
	require.NoError(t, boxarchive.NewManager().Create(context.Background(), src, archivePath))

	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	return data
}

func TestAdd_DirectArchiveEndToEnd(t *testing.T) {
	tempDir := t.TempDir()
	archiveData := fixtureArchive(t)

	srv := testutil.NewFixtureServer(t, testutil.Route{
		Path:        "/box.tar.gz",
		Body:        archiveData,
		ContentType: "application/gzip",
	})

	collectionDir := filepath.Join(tempDir, "collection")
	cfgPath := testutil.WriteTempConfig(t, collectionDir, filepath.Join(tempDir, "tmp"))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "add", srv.URL + "/box.tar.gz", "--name", "hashicorp/bionic64"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	listCmd := newRootCmd()
	var out testCapture
	out.start(t)
	listCmd.SetArgs([]string{"--config", cfgPath, "cache", "list"})
	require.NoError(t, listCmd.ExecuteContext(context.Background()))
	output := out.stop()

	require.Contains(t, output, "hashicorp/bionic64")
}

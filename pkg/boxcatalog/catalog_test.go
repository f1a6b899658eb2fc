package boxcatalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxadd"
	"github.com/cperrin88/boxkeep/pkg/boxarchive"
	"github.com/cperrin88/boxkeep/pkg/boxcatalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "source")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "metadata.json"), []byte(`{}`), 0o644))

	archivePath := filepath.Join(root, "box.tar.gz")
	require.NoError(t, boxarchive.NewManager().Create(context.Background(), src, archivePath))
	return archivePath
}

func TestCatalogAddAndFind(t *testing.T) {
	cat, err := boxcatalog.Open(t.TempDir())
	require.NoError(t, err)

	archivePath := fixtureArchive(t)

	box, err := cat.Add(archivePath, "hashicorp/bionic64", "1.0.0", boxadd.AddOptions{
		Architecture: "amd64",
		Providers:    []string{"virtualbox"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hashicorp/bionic64", box.Name)

	_, err = os.Stat(filepath.Join(box.Path, "metadata.json"))
	require.NoError(t, err)

	found, err := cat.Find("hashicorp/bionic64", []string{"virtualbox"}, "1.0.0", "amd64")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, box.Path, found.Path)
}

func TestCatalogFindMissingReturnsNil(t *testing.T) {
	cat, err := boxcatalog.Open(t.TempDir())
	require.NoError(t, err)

	found, err := cat.Find("hashicorp/bionic64", nil, "", "")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cat, err := boxcatalog.Open(dir)
	require.NoError(t, err)

	_, err = cat.Add(fixtureArchive(t), "hashicorp/bionic64", "1.0.0", boxadd.AddOptions{Providers: []string{"virtualbox"}})
	require.NoError(t, err)

	reopened, err := boxcatalog.Open(dir)
	require.NoError(t, err)

	found, err := reopened.Find("hashicorp/bionic64", nil, "", "")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "1.0.0", found.Version)
}

func TestCatalogAddReplacesSameKey(t *testing.T) {
	cat, err := boxcatalog.Open(t.TempDir())
	require.NoError(t, err)

	_, err = cat.Add(fixtureArchive(t), "hashicorp/bionic64", "1.0.0", boxadd.AddOptions{Providers: []string{"virtualbox"}, Architecture: "amd64"})
	require.NoError(t, err)
	_, err = cat.Add(fixtureArchive(t), "hashicorp/bionic64", "1.0.0", boxadd.AddOptions{Providers: []string{"virtualbox"}, Architecture: "arm64"})
	require.NoError(t, err)

	assert.Len(t, cat.List(), 1)
	found, err := cat.Find("hashicorp/bionic64", []string{"virtualbox"}, "1.0.0", "arm64")
	require.NoError(t, err)
	require.NotNil(t, found)
}

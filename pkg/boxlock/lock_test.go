//go:build !windows

package boxlock_test

import (
	"testing"

	"github.com/cperrin88/boxkeep/pkg/boxerrors"
	"github.com/cperrin88/boxkeep/pkg/boxlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()

	lock, err := boxlock.Acquire(dir, "https://example.com/box.box")
	require.NoError(t, err)
	require.NotNil(t, lock)

	require.NoError(t, lock.Release())
}

func TestAcquireFailsWhenAlreadyHeld(t *testing.T) {
	dir := t.TempDir()
	url := "https://example.com/box.box"

	first, err := boxlock.Acquire(dir, url)
	require.NoError(t, err)
	defer first.Release()

	_, err = boxlock.Acquire(dir, url)
	require.Error(t, err)
	kind, ok := boxerrors.GetKind(err)
	require.True(t, ok)
	assert.Equal(t, boxerrors.KindDownloadAlreadyInProgress, kind)
}

func TestDifferentURLsDoNotCollide(t *testing.T) {
	dir := t.TempDir()

	lockA, err := boxlock.Acquire(dir, "https://example.com/a.box")
	require.NoError(t, err)
	defer lockA.Release()

	lockB, err := boxlock.Acquire(dir, "https://example.com/b.box")
	require.NoError(t, err)
	defer lockB.Release()
}

func TestSamePathForSameURL(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, boxlock.Path(dir, "https://example.com/a.box"), boxlock.Path(dir, "https://example.com/a.box"))
	assert.NotEqual(t, boxlock.Path(dir, "https://example.com/a.box"), boxlock.Path(dir, "https://example.com/b.box"))
}

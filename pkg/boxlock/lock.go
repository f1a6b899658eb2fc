//go:build !windows

// Package boxlock serialises concurrent box-add attempts against the same
// URL using a non-blocking exclusive file lock, one lock file per URL.
package boxlock

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cperrin88/boxkeep/pkg/boxerrors"
	"github.com/cperrin88/boxkeep/pkg/boxurl"
	"golang.org/x/sys/unix"
)

// Lock represents a held mutex-file lock for the span of a single
// fetch-and-verify attempt. The zero value is not usable; obtain one via
// Acquire.
type Lock struct {
	fd   int
	path string
}

// Path returns the lock file path for the canonical URL, rooted at tmpDir.
// Two calls with the same url always return the same path; different URLs
// never collide (barring a sha1 collision).
func Path(tmpDir, url string) string {
	sum := sha1.Sum([]byte(url)) //nolint:gosec // identity hash, not a security boundary
	return filepath.Join(tmpDir, "box"+hex.EncodeToString(sum[:])+".lock")
}

// Acquire attempts to take an exclusive, non-blocking lock on the lock file
// for url under tmpDir. It fails fast with a boxerrors.BoxError of Kind
// DownloadAlreadyInProgress when another process already holds the lock;
// it never blocks waiting for the lock to free up.
func Acquire(tmpDir, url string) (*Lock, error) {
	path := Path(tmpDir, url)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = unix.Close(fd)
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, boxerrors.Wrap(boxerrors.KindDownloadAlreadyInProgress, "another process is already downloading "+boxurl.Scrub(url), err)
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &Lock{fd: fd, path: path}, nil
}

// Release unlocks and closes the lock file. It is safe to call once per
// successfully acquired Lock; it does not remove the lock file, since a
// concurrent waiter may still hold a reference to its inode.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := unix.Flock(l.fd, unix.LOCK_UN); err != nil {
		_ = unix.Close(l.fd)
		return fmt.Errorf("unlock %s: %w", l.path, err)
	}
	return unix.Close(l.fd)
}

// Package boxchecksum verifies a downloaded box archive against a declared
// checksum, supporting every algorithm a metadata provider entry may name.
package boxchecksum

import (
	"crypto/md5"  //nolint:gosec // declared algorithm, not used for anything security-sensitive
	"crypto/sha1" //nolint:gosec // declared algorithm, not used for anything security-sensitive
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cperrin88/boxkeep/pkg/boxerrors"
)

// hashers maps a declared checksum_type to its hash.Hash constructor. This
// is the complete set of algorithms the box-add pipeline accepts.
var hashers = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// SupportedAlgorithms reports whether algo (case-insensitive) is a
// recognised checksum_type.
func SupportedAlgorithms(algo string) bool {
	_, ok := hashers[strings.ToLower(algo)]
	return ok
}

// Verify computes the hash of the file at path using algo and compares it
// against want (case-insensitive hex digest). It returns a
// boxerrors.BoxError of Kind BoxChecksumMismatch on disagreement, and a
// plain error if algo is unrecognised or the file cannot be read.
func Verify(path, algo, want string) error {
	newHash, ok := hashers[strings.ToLower(algo)]
	if !ok {
		return fmt.Errorf("unsupported checksum algorithm %q", algo)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for checksum verification: %w", path, err)
	}
	defer f.Close()

	h := newHash()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash %s: %w", path, err)
	}

	got := fmt.Sprintf("%x", h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return boxerrors.Wrap(boxerrors.KindBoxChecksumMismatch, fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", path, want, got), nil)
	}

	return nil
}
